package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// ModelFileName is the trained artifact written by the trainer for a symbol
func ModelFileName(symbol string) string {
	return strings.ToUpper(symbol) + "_model.pkl"
}

// MetadataFileName is the metadata document written next to the artifact
func MetadataFileName(symbol string) string {
	return strings.ToUpper(symbol) + "_metadata.json"
}

// MetadataStore reads model metadata from the models directory
type MetadataStore struct {
	modelsDir string
	cache     *MetadataCache
	logger    logrus.FieldLogger
}

// NewMetadataStore creates a store over modelsDir. A non-positive ttl
// disables caching.
func NewMetadataStore(modelsDir string, ttl time.Duration, log logrus.FieldLogger) *MetadataStore {
	store := &MetadataStore{
		modelsDir: modelsDir,
		logger:    logger.OrDiscard(log),
	}
	if ttl > 0 {
		store.cache = NewMetadataCache(ttl)
	}
	return store
}

// Load returns the metadata of symbol's trained model. The model artifact
// must exist. A missing metadata document is tolerated: the returned metadata
// then carries only the symbol, and callers fall back to defaults.
func (s *MetadataStore) Load(symbol string) (*models.ModelMetadata, error) {
	symbol = strings.ToUpper(symbol)
	if s.cache != nil {
		if meta := s.cache.Get(symbol); meta != nil {
			return meta, nil
		}
	}

	modelPath := filepath.Join(s.modelsDir, ModelFileName(symbol))
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.NewNotFoundError("model", modelPath)
		}
		return nil, fmt.Errorf("failed to stat model: %w", err)
	}

	metadataPath := filepath.Join(s.modelsDir, MetadataFileName(symbol))
	data, err := os.ReadFile(metadataPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.WithField("path", metadataPath).Warn("Model metadata not found, using defaults")
		return &models.ModelMetadata{StockSymbol: symbol}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta models.ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, models.WrapValidationError("malformed metadata "+metadataPath, err)
	}
	if meta.StockSymbol == "" {
		meta.StockSymbol = symbol
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":        symbol,
		"model_version": meta.ModelVersion,
		"trained_at":    meta.TrainedAt,
	}).Info("Model metadata loaded")

	if s.cache != nil {
		s.cache.Set(symbol, &meta)
	}
	return &meta, nil
}

// Invalidate forgets the cached metadata of symbol
func (s *MetadataStore) Invalidate(symbol string) {
	if s.cache != nil {
		s.cache.Invalidate(symbol)
	}
}
