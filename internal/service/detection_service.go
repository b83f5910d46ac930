package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"agrolens/internal/advisor"
	"agrolens/internal/classifier"
	apperrors "agrolens/internal/errors"
	"agrolens/internal/labels"
	"agrolens/internal/logger"
	"agrolens/internal/preprocess"
	"agrolens/internal/storage"
	"agrolens/pkg/models"
)

const plantNotDetectedMessage = "No valid plant leaf detected. Please upload a clear image of a plant leaf."

// DetectionService runs the full detect-and-advise pipeline and the chat
// passthrough.
type DetectionService interface {
	// DetectDisease takes raw uploaded image bytes and a response language,
	// and returns the prediction with its treatment details.
	DetectDisease(ctx context.Context, imageBytes []byte, language string) (*models.DetectionResponse, error)

	// Chat forwards a conversation turn about a diagnosis.
	Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

type detectionService struct {
	imageSize       int
	gatekeeper      classifier.Gatekeeper
	disease         classifier.Disease
	labelTable      *labels.Table
	treatments      advisor.Advisor
	archiver        storage.Archiver
	advisoryTimeout time.Duration
}

// NewDetectionService wires the pipeline stages together. All dependencies
// are loaded once at startup and shared across requests.
func NewDetectionService(
	imageSize int,
	gatekeeper classifier.Gatekeeper,
	disease classifier.Disease,
	labelTable *labels.Table,
	treatments advisor.Advisor,
	archiver storage.Archiver,
	advisoryTimeout time.Duration,
) DetectionService {
	return &detectionService{
		imageSize:       imageSize,
		gatekeeper:      gatekeeper,
		disease:         disease,
		labelTable:      labelTable,
		treatments:      treatments,
		archiver:        archiver,
		advisoryTimeout: advisoryTimeout,
	}
}

func (s *detectionService) DetectDisease(ctx context.Context, imageBytes []byte, language string) (*models.DetectionResponse, error) {
	pixels, err := preprocess.Prepare(imageBytes, s.imageSize, false)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid image file: %v", err), err)
	}

	leafProb, err := s.gatekeeper.LeafProbability(pixels)
	if err != nil {
		return nil, apperrors.NewInternalError("gatekeeper inference failed", err)
	}
	if !classifier.AcceptLeaf(leafProb) {
		return nil, apperrors.NewPlantNotDetectedError(plantNotDetectedMessage)
	}

	// The same preprocessed tensor feeds both models.
	probs, err := s.disease.Probabilities(pixels)
	if err != nil {
		return nil, apperrors.NewInternalError("disease inference failed", err)
	}
	if len(probs) != s.labelTable.Len() {
		return nil, apperrors.NewUnknownClassError(
			fmt.Sprintf("model produced %d classes but label table has %d", len(probs), s.labelTable.Len()), nil)
	}

	classIdx, confidence := classifier.TopClass(probs)
	diseaseName, err := s.labelTable.Name(classIdx)
	if err != nil {
		return nil, err
	}

	advisoryCtx, cancel := context.WithTimeout(ctx, s.advisoryTimeout)
	defer cancel()
	treatment, err := s.treatments.DiseaseInfo(advisoryCtx, diseaseName, language)
	if err != nil {
		return nil, err
	}

	s.archiveUpload(ctx, diseaseName, imageBytes)

	return &models.DetectionResponse{
		DiseaseInfo: models.DiseasePrediction{
			PredictedDisease: diseaseName,
			ConfidenceScore:  confidence,
		},
		TreatmentDetails: *treatment,
	}, nil
}

func (s *detectionService) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	advisoryCtx, cancel := context.WithTimeout(ctx, s.advisoryTimeout)
	defer cancel()
	return s.treatments.Chat(advisoryCtx, message, history)
}

// archiveUpload copies an accepted upload to the configured archive.
// Failures are logged and never surface to the client.
func (s *detectionService) archiveUpload(ctx context.Context, diseaseName string, imageBytes []byte) {
	name := archiveBlobName(diseaseName, time.Now().UTC())
	if err := s.archiver.Save(ctx, name, imageBytes); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"blob": name,
		}).Warn("Failed to archive upload")
	}
}

// archiveBlobName groups archived uploads by predicted label.
func archiveBlobName(diseaseName string, now time.Time) string {
	label := strings.ToLower(diseaseName)
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, label)
	return fmt.Sprintf("%s/%s.img", label, now.Format("20060102T150405.000000000"))
}
