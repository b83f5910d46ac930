package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "agrolens/internal/errors"
	"agrolens/internal/labels"
	"agrolens/pkg/models"
)

type fakeGatekeeper struct {
	probability float32
	err         error
}

func (f *fakeGatekeeper) LeafProbability(pixels []float32) (float32, error) {
	return f.probability, f.err
}

type fakeDisease struct {
	probs []float32
	err   error
}

func (f *fakeDisease) Probabilities(pixels []float32) ([]float32, error) {
	return f.probs, f.err
}

type fakeAdvisor struct {
	info        *models.DiseaseInfo
	reply       string
	err         error
	gotDisease  string
	gotLanguage string
	gotMessage  string
	gotHistory  []models.ChatMessage
}

func (f *fakeAdvisor) DiseaseInfo(ctx context.Context, disease, language string) (*models.DiseaseInfo, error) {
	f.gotDisease = disease
	f.gotLanguage = language
	return f.info, f.err
}

func (f *fakeAdvisor) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	f.gotMessage = message
	f.gotHistory = history
	return f.reply, f.err
}

type recordingArchiver struct {
	names []string
}

func (r *recordingArchiver) Save(ctx context.Context, name string, data []byte) error {
	r.names = append(r.names, name)
	return nil
}

func testLabelTable(t *testing.T) *labels.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_names.json")
	if err := os.WriteFile(path, []byte(`{"0":"Healthy","1":"Leaf Blight","2":"Rust"}`), 0o644); err != nil {
		t.Fatalf("Failed to write label table: %v", err)
	}
	table, err := labels.Load(path)
	if err != nil {
		t.Fatalf("Failed to load label table: %v", err)
	}
	return table
}

func leafImageBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{30, 160, 40, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func treatmentStub() *models.DiseaseInfo {
	return &models.DiseaseInfo{
		Medicines:   []models.MedicineInfo{{Name: "Copper fungicide"}},
		Precautions: []string{"Wear gloves"},
		Causes:      []string{"Fungal spores"},
		Summary:     "A fungal leaf disease.",
		Disclaimer:  "Consult an agronomist.",
	}
}

func newTestService(gk *fakeGatekeeper, dz *fakeDisease, adv *fakeAdvisor, arch *recordingArchiver, t *testing.T) DetectionService {
	return NewDetectionService(224, gk, dz, testLabelTable(t), adv, arch, 5*time.Second)
}

func TestDetectDisease_Success(t *testing.T) {
	gk := &fakeGatekeeper{probability: 0.95}
	dz := &fakeDisease{probs: []float32{0.05, 0.85, 0.10}}
	adv := &fakeAdvisor{info: treatmentStub()}
	arch := &recordingArchiver{}
	svc := newTestService(gk, dz, adv, arch, t)

	resp, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "Spanish")
	if err != nil {
		t.Fatalf("DetectDisease failed: %v", err)
	}

	if resp.DiseaseInfo.PredictedDisease != "Leaf Blight" {
		t.Errorf("Predicted disease = %q, want 'Leaf Blight'", resp.DiseaseInfo.PredictedDisease)
	}
	if math.Abs(resp.DiseaseInfo.ConfidenceScore-85.0) > 1e-4 {
		t.Errorf("Confidence = %f, want 85.0", resp.DiseaseInfo.ConfidenceScore)
	}
	if resp.TreatmentDetails.Summary != "A fungal leaf disease." {
		t.Errorf("Unexpected treatment details: %+v", resp.TreatmentDetails)
	}
	if adv.gotDisease != "Leaf Blight" || adv.gotLanguage != "Spanish" {
		t.Errorf("Advisor got (%q, %q), want ('Leaf Blight', 'Spanish')", adv.gotDisease, adv.gotLanguage)
	}
	if len(arch.names) != 1 || !strings.HasPrefix(arch.names[0], "leaf-blight/") {
		t.Errorf("Expected one archived blob under leaf-blight/, got %v", arch.names)
	}
}

func TestDetectDisease_GatekeeperRejects(t *testing.T) {
	gk := &fakeGatekeeper{probability: 0.1}
	dz := &fakeDisease{probs: []float32{1, 0, 0}}
	adv := &fakeAdvisor{info: treatmentStub()}
	arch := &recordingArchiver{}
	svc := newTestService(gk, dz, adv, arch, t)

	_, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "English")
	if err == nil {
		t.Fatal("Expected rejection")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypePlantNotDetected) {
		t.Fatalf("Expected plant_not_detected error, got %v", err)
	}
	if !strings.Contains(err.(*apperrors.AppError).Message, "No valid plant leaf detected") {
		t.Errorf("Unexpected rejection message: %v", err)
	}
	if adv.gotDisease != "" {
		t.Error("Advisor must not be called after rejection")
	}
	if len(arch.names) != 0 {
		t.Error("Rejected uploads must not be archived")
	}
}

func TestDetectDisease_BoundaryProbabilityAccepts(t *testing.T) {
	// 0.5 rounds half-away-from-zero and proceeds to classification.
	gk := &fakeGatekeeper{probability: 0.5}
	dz := &fakeDisease{probs: []float32{0.9, 0.05, 0.05}}
	adv := &fakeAdvisor{info: treatmentStub()}
	svc := newTestService(gk, dz, adv, &recordingArchiver{}, t)

	resp, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "English")
	if err != nil {
		t.Fatalf("DetectDisease failed: %v", err)
	}
	if resp.DiseaseInfo.PredictedDisease != "Healthy" {
		t.Errorf("Predicted disease = %q, want 'Healthy'", resp.DiseaseInfo.PredictedDisease)
	}
}

func TestDetectDisease_InvalidImage(t *testing.T) {
	svc := newTestService(
		&fakeGatekeeper{probability: 1},
		&fakeDisease{probs: []float32{1, 0, 0}},
		&fakeAdvisor{info: treatmentStub()},
		&recordingArchiver{}, t)

	_, err := svc.DetectDisease(context.Background(), []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, "English")
	if err == nil {
		t.Fatal("Expected error for undecodable upload")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if !strings.Contains(err.(*apperrors.AppError).Message, "Invalid image file") {
		t.Errorf("Message should mention 'Invalid image file': %v", err)
	}
}

func TestDetectDisease_OutputWidthMismatch(t *testing.T) {
	svc := newTestService(
		&fakeGatekeeper{probability: 0.95},
		&fakeDisease{probs: []float32{0.5, 0.5}}, // table has 3 classes
		&fakeAdvisor{info: treatmentStub()},
		&recordingArchiver{}, t)

	_, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "English")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeUnknownClass) {
		t.Errorf("Expected unknown_class error, got %v", err)
	}
}

func TestDetectDisease_AdvisoryFailure(t *testing.T) {
	svc := newTestService(
		&fakeGatekeeper{probability: 0.95},
		&fakeDisease{probs: []float32{0.05, 0.85, 0.10}},
		&fakeAdvisor{err: apperrors.NewAdvisoryError("treatment lookup failed", errors.New("connection refused"))},
		&recordingArchiver{}, t)

	_, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "English")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeAdvisory) {
		t.Errorf("Expected advisory error, got %v", err)
	}
}

func TestDetectDisease_InferenceFailure(t *testing.T) {
	svc := newTestService(
		&fakeGatekeeper{err: errors.New("session destroyed")},
		&fakeDisease{probs: []float32{1, 0, 0}},
		&fakeAdvisor{info: treatmentStub()},
		&recordingArchiver{}, t)

	_, err := svc.DetectDisease(context.Background(), leafImageBytes(t), "English")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInternal) {
		t.Errorf("Expected internal error, got %v", err)
	}
}

func TestChat_Passthrough(t *testing.T) {
	adv := &fakeAdvisor{reply: "Glad to help."}
	svc := newTestService(&fakeGatekeeper{}, &fakeDisease{}, adv, &recordingArchiver{}, t)

	history := []models.ChatMessage{{Role: "user", Content: "hello"}}
	reply, err := svc.Chat(context.Background(), "thanks", history)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "Glad to help." {
		t.Errorf("Unexpected reply: %q", reply)
	}
	if adv.gotMessage != "thanks" || len(adv.gotHistory) != 1 {
		t.Errorf("Advisor got message=%q history=%v", adv.gotMessage, adv.gotHistory)
	}
}

func TestArchiveBlobName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	name := archiveBlobName("Leaf Blight", now)
	if !strings.HasPrefix(name, "leaf-blight/20260314T092653") {
		t.Errorf("Unexpected blob name: %q", name)
	}
}
