package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"occupancy/ml"
)

var (
	predictNumeric map[string]string
	predictState   string
	predictClimate string
	predictIECC    string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify one household and print the result as JSON",
	Long: `Predict runs a single household through the loaded model.

Example:
  occupancy predict --state CA --climate Marine --iecc 4C --set KWH=12.5,BEDROOMS=3`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringToStringVar(&predictNumeric, "set", nil, "numeric inputs as NAME=VALUE; unset inputs are 0")
	predictCmd.Flags().StringVar(&predictState, "state", "", "state postal code")
	predictCmd.Flags().StringVar(&predictClimate, "climate", "", "Building America climate zone")
	predictCmd.Flags().StringVar(&predictIECC, "iecc", "", "IECC climate code")
	rootCmd.AddCommand(predictCmd)
}

type predictOutput struct {
	ml.PredictionResult
	Message string `json:"message"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := ml.RawInput{
		Numeric: make(map[string]float64, len(predictNumeric)),
		Categories: map[string]string{
			ml.GroupState:   predictState,
			ml.GroupClimate: predictClimate,
			ml.GroupIECC:    predictIECC,
		},
	}
	for name, raw := range predictNumeric {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("--set %s: %q is not a number", name, raw)
		}
		input.Numeric[name] = value
	}

	predictor, err := buildPredictor(cfg, zap.NewNop())
	if err != nil {
		return err
	}

	result, err := predictor.Predict(context.Background(), input)
	if err != nil {
		return err
	}

	out := predictOutput{PredictionResult: result, Message: result.Label}
	if result.Inconclusive {
		out.Message = ml.InconclusiveMessage
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
