package classifier

import "fmt"

// Gatekeeper scores whether an image plausibly shows a plant leaf. It is the
// pre-filter that runs before disease classification.
type Gatekeeper interface {
	LeafProbability(pixels []float32) (float32, error)
}

// Disease maps a preprocessed leaf image to a probability distribution over
// the known disease classes.
type Disease interface {
	Probabilities(pixels []float32) ([]float32, error)
}

// ONNXGatekeeper is the binary leaf/not-leaf model.
type ONNXGatekeeper struct {
	model *Model
}

// NewGatekeeper loads the gatekeeper model. Input is a single channels-last
// RGB image of imageSize x imageSize; output is one probability.
func NewGatekeeper(path string, imageSize int) (*ONNXGatekeeper, error) {
	model, err := NewModel(path,
		[]int64{1, int64(imageSize), int64(imageSize), 3},
		[]int64{1, 1})
	if err != nil {
		return nil, fmt.Errorf("failed to load gatekeeper model: %w", err)
	}
	return &ONNXGatekeeper{model: model}, nil
}

func (g *ONNXGatekeeper) LeafProbability(pixels []float32) (float32, error) {
	out, err := g.model.Run(pixels)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("gatekeeper model produced no output")
	}
	return out[0], nil
}

func (g *ONNXGatekeeper) Close() {
	g.model.Close()
}

// ONNXDisease is the multi-class disease model.
type ONNXDisease struct {
	model *Model
}

// NewDisease loads the disease model. numClasses must match the class-name
// table loaded at startup.
func NewDisease(path string, imageSize, numClasses int) (*ONNXDisease, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("numClasses must be > 0 (got %d)", numClasses)
	}
	model, err := NewModel(path,
		[]int64{1, int64(imageSize), int64(imageSize), 3},
		[]int64{1, int64(numClasses)})
	if err != nil {
		return nil, fmt.Errorf("failed to load disease model: %w", err)
	}
	return &ONNXDisease{model: model}, nil
}

func (d *ONNXDisease) Probabilities(pixels []float32) ([]float32, error) {
	return d.model.Run(pixels)
}

func (d *ONNXDisease) Close() {
	d.model.Close()
}
