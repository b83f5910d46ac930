package container

import (
	"fmt"
	"net/http"

	"agrolens/internal/advisor"
	"agrolens/internal/classifier"
	"agrolens/internal/config"
	"agrolens/internal/labels"
	"agrolens/internal/service"
	"agrolens/internal/storage"
	"agrolens/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	labelTable *labels.Table
	gatekeeper *classifier.ONNXGatekeeper
	disease    *classifier.ONNXDisease
	advisor    advisor.Advisor
	archiver   storage.Archiver
	service    service.DetectionService
	handler    http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// The label table is a startup precondition: the process must not serve
	// requests without it.
	labelTable, err := labels.Load(cfg.ClassNamesPath)
	if err != nil {
		return nil, err
	}

	gatekeeper, err := classifier.NewGatekeeper(cfg.GatekeeperModelPath, cfg.ImageSize)
	if err != nil {
		return nil, err
	}

	disease, err := classifier.NewDisease(cfg.DiseaseModelPath, cfg.ImageSize, labelTable.Len())
	if err != nil {
		gatekeeper.Close()
		return nil, err
	}

	treatmentAdvisor, err := advisor.New(cfg.AdvisoryAPIKey, cfg.AdvisoryBaseURL, cfg.AdvisoryModel)
	if err != nil {
		gatekeeper.Close()
		disease.Close()
		return nil, err
	}

	archiver := storage.NewNoopArchiver()
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewAzureArchiver(cfg.ArchiveAccountName, cfg.ArchiveAccountKey, cfg.ArchiveContainer)
		if err != nil {
			gatekeeper.Close()
			disease.Close()
			return nil, fmt.Errorf("failed to configure upload archive: %w", err)
		}
	}

	detectionService := service.NewDetectionService(
		cfg.ImageSize,
		gatekeeper,
		disease,
		labelTable,
		treatmentAdvisor,
		archiver,
		cfg.AdvisoryTimeout,
	)
	handler := transport.NewHandler(detectionService, cfg)

	return &Container{
		config:     cfg,
		labelTable: labelTable,
		gatekeeper: gatekeeper,
		disease:    disease,
		advisor:    treatmentAdvisor,
		archiver:   archiver,
		service:    detectionService,
		handler:    handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the loaded model sessions.
func (c *Container) Close() {
	if c.gatekeeper != nil {
		c.gatekeeper.Close()
	}
	if c.disease != nil {
		c.disease.Close()
	}
}
