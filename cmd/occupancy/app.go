package main

import (
	"go.uber.org/zap"

	"occupancy/config"
	"occupancy/ml"
)

// buildPredictor loads the feature schema and model named in cfg and checks
// that they agree. Any failure here is fatal for the caller.
func buildPredictor(cfg *config.Config, logger *zap.Logger) (*ml.Predictor, error) {
	schema, err := ml.LoadSchemaFile(cfg.Model.SchemaPath)
	if err != nil {
		return nil, err
	}
	if err := schema.RequireGroups(ml.GroupState, ml.GroupClimate, ml.GroupIECC); err != nil {
		return nil, err
	}

	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path, ml.ONNXOptions{
		SharedLibraryPath: cfg.Model.RuntimeLibrary,
		InputName:         cfg.Model.InputName,
		ProbabilityOutput: cfg.Model.ProbabilityOutput,
		Labels:            cfg.Model.Labels,
		FeatureCount:      schema.Len(),
	})
	if err != nil {
		return nil, err
	}

	classifier, err := ml.NewClassifier(model)
	if err != nil {
		return nil, err
	}

	predictor, err := ml.NewPredictor(schema, classifier,
		ml.WithThreshold(cfg.Model.Threshold),
		ml.WithCache(cfg.Cache.Size))
	if err != nil {
		return nil, err
	}

	logger.Info("model loaded",
		zap.String("type", cfg.Model.Type),
		zap.String("path", cfg.Model.Path),
		zap.Int("features", schema.Len()),
		zap.Strings("labels", classifier.Labels()),
		zap.Float64("threshold", predictor.Threshold()))
	return predictor, nil
}
