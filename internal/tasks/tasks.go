package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registered for image.Decode
	"io"
	"log"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/email"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/storage"
	"github.com/ylvish/torque/internal/utils"
)

// Task types.
const (
	TypeSubmissionNotify = "notify:submission"
	TypeLeadNotify       = "notify:lead"
	TypeImageProcess     = "image:process"
	TypeLeadRecount      = "listing:lead_count:recount"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// SubmissionNotifyPayload announces a fresh seller submission to staff.
type SubmissionNotifyPayload struct {
	SubmissionID string `json:"submission_id"`
	ReferenceID  string `json:"reference_id"`
	SellerName   string `json:"seller_name"`
	CarMake      string `json:"car_make"`
	CarModel     string `json:"car_model"`
	CarYear      int    `json:"car_year"`
}

// LeadNotifyPayload announces a fresh buyer lead to staff.
type LeadNotifyPayload struct {
	LeadID       string `json:"lead_id"`
	ListingID    string `json:"listing_id"`
	BuyerName    string `json:"buyer_name"`
	Interest     string `json:"interest"`
	ListingTitle string `json:"listing_title"`
}

// ImageProcessPayload requests normalization of an uploaded image.
type ImageProcessPayload struct {
	S3Key string `json:"s3_key"`
}

// LeadRecountPayload requests rebuilding a listing's denormalized lead count.
type LeadRecountPayload struct {
	ListingID string `json:"listing_id"`
}

func enqueue(client *asynq.Client, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	if _, err := client.Enqueue(asynq.NewTask(taskType, data), opts...); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}
	return nil
}

// EnqueueSubmissionNotify queues the staff notification for a new submission.
func EnqueueSubmissionNotify(client *asynq.Client, payload SubmissionNotifyPayload) error {
	return enqueue(client, TypeSubmissionNotify, payload, asynq.Queue("critical"))
}

// EnqueueLeadNotify queues the staff notification for a new lead.
func EnqueueLeadNotify(client *asynq.Client, payload LeadNotifyPayload) error {
	return enqueue(client, TypeLeadNotify, payload, asynq.Queue("critical"))
}

// EnqueueImageProcess queues normalization of a freshly uploaded image.
func EnqueueImageProcess(client *asynq.Client, payload ImageProcessPayload) error {
	return enqueue(client, TypeImageProcess, payload, asynq.Queue("images"))
}

// EnqueueLeadRecount queues a rebuild of a listing's lead counter.
func EnqueueLeadRecount(client *asynq.Client, payload LeadRecountPayload) error {
	return enqueue(client, TypeLeadRecount, payload, asynq.Queue("low"))
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	emailSender    email.Sender
	storageService storage.IS3Storage
	listingService services.IListingService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	listingService services.IListingService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		emailSender:    emailSender,
		storageService: storageService,
		listingService: listingService,
	}
}

// SetupServer configures an Asynq server and its handler mux. The caller
// runs the server and owns its shutdown.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSubmissionNotify, processor.HandleSubmissionNotifyTask)
	mux.HandleFunc(TypeLeadNotify, processor.HandleLeadNotifyTask)
	mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	mux.HandleFunc(TypeLeadRecount, processor.HandleLeadRecountTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// notifyStaff sends a plain-text email to the configured staff inbox.
func (p *TaskProcessor) notifyStaff(ctx context.Context, subject, body string) error {
	if p.cfg.StaffNotifyEmail == "" {
		log.Printf("STAFF_NOTIFY_EMAIL not configured, dropping notification: %s", subject)
		return nil
	}
	to := []string{p.cfg.StaffNotifyEmail}
	raw := email.BuildMessage(p.cfg.SmtpFromAddress, to, subject, body)
	return p.emailSender.Send(ctx, to, subject, raw)
}

// HandleSubmissionNotifyTask emails staff about a new seller submission.
func (p *TaskProcessor) HandleSubmissionNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload SubmissionNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal submission notify payload: %v: %w", err, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("New sell submission %s: %d %s %s", payload.ReferenceID, payload.CarYear, payload.CarMake, payload.CarModel)
	body := fmt.Sprintf(
		"A new seller submission has arrived.\r\n\r\n"+
			"Reference: %s\r\n"+
			"Seller: %s\r\n"+
			"Car: %d %s %s\r\n\r\n"+
			"Open the dashboard to start the review.\r\n",
		payload.ReferenceID, payload.SellerName, payload.CarYear, payload.CarMake, payload.CarModel)

	if err := p.notifyStaff(ctx, subject, body); err != nil {
		log.Printf("Failed to send submission notification for %s: %v", payload.ReferenceID, err)
		return err
	}
	return nil
}

// HandleLeadNotifyTask emails staff about a new buyer lead.
func (p *TaskProcessor) HandleLeadNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead notify payload: %v: %w", err, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("New lead on %s", payload.ListingTitle)
	body := fmt.Sprintf(
		"A buyer inquiry has arrived.\r\n\r\n"+
			"Listing: %s\r\n"+
			"Buyer: %s\r\n"+
			"Interest: %s\r\n\r\n"+
			"Open the dashboard to follow up.\r\n",
		payload.ListingTitle, payload.BuyerName, payload.Interest)

	if err := p.notifyStaff(ctx, subject, body); err != nil {
		log.Printf("Failed to send lead notification for lead %s: %v", payload.LeadID, err)
		return err
	}
	return nil
}

// HandleImageProcessTask normalizes an uploaded image: enforces the size cap
// and shrinks anything larger than the configured max dimension, overwriting
// the original object.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s", payload.S3Key)

	body, contentType, err := p.storageService.GetObject(ctx, payload.S3Key)
	if err != nil {
		log.Printf("Error getting object %s from S3: %v", payload.S3Key, err)
		return fmt.Errorf("failed to download image from S3: %w", err)
	}
	defer body.Close()

	imgData, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Image %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.ImageMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim
	if !needsResize {
		return nil
	}

	resizedImg := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to re-encode resized image: %w", err)
	}
	contentType = "image/jpeg"
	log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())

	if int64(buf.Len()) > maxSizeBytes {
		log.Printf("Resized image %s still exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, buf.Len(), maxSizeBytes)
		return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
	}

	if err := p.storageService.PutObject(ctx, payload.S3Key, contentType, &buf); err != nil {
		log.Printf("Error uploading processed image %s to S3: %v", payload.S3Key, err)
		return fmt.Errorf("failed to upload processed image: %w", err)
	}

	log.Printf("Image task processed successfully: Key=%s", payload.S3Key)
	return nil
}

// HandleLeadRecountTask rebuilds a listing's denormalized lead counter from
// the leads collection.
func (p *TaskProcessor) HandleLeadRecountTask(ctx context.Context, t *asynq.Task) error {
	var payload LeadRecountPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead recount payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		log.Printf("Invalid ListingID in recount payload: %s", payload.ListingID)
		return fmt.Errorf("invalid listing ID in payload: %w", asynq.SkipRetry)
	}

	if err := p.listingService.RecountLeads(ctx, listingID); err != nil {
		log.Printf("Error recounting leads for listing %s: %v", payload.ListingID, err)
		return err
	}
	return nil
}
