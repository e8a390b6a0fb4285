// Package client provides WebSocket and HTTP clients for the NeuraSect
// training backend. Types mirror the backend wire protocol.
package client

import (
	"encoding/json"
	"fmt"
)

// EventType identifies the kind of training progress event.
type EventType string

const (
	EventStarted  EventType = "training_started"
	EventEpoch    EventType = "epoch_update"
	EventComplete EventType = "training_complete"
	EventError    EventType = "error"
)

// Terminal reports whether no further events follow this one.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// ProgressEvent is one server-pushed update for a training session.
// The backend sends flat JSON objects discriminated by the "type" field;
// metric fields are pointers because the backend omits the ones that do
// not apply to the current loss function (accuracy for regression, MAE
// for classification).
type ProgressEvent struct {
	Type         EventType       `json:"type"`
	Epoch        int             `json:"epoch,omitempty"`
	Loss         float64         `json:"loss,omitempty"`
	Accuracy     *float64        `json:"accuracy,omitempty"`
	ValLoss      *float64        `json:"val_loss,omitempty"`
	ValAccuracy  *float64        `json:"val_accuracy,omitempty"`
	MAE          *float64        `json:"mae,omitempty"`
	ValMAE       *float64        `json:"val_mae,omitempty"`
	Message      string          `json:"message,omitempty"`
	FinalMetrics json.RawMessage `json:"final_metrics,omitempty"`
	Epochs       int             `json:"epochs,omitempty"`
}

// ModelType enumerates the supported model kinds.
type ModelType string

const (
	ModelNeuralNetwork ModelType = "neural_network"
)

// Regularizer enumerates the supported regularization strategies.
type Regularizer string

const (
	RegularizerNone      Regularizer = "none"
	RegularizerL1        Regularizer = "l1"
	RegularizerL2        Regularizer = "l2"
	RegularizerDropout   Regularizer = "dropout"
	RegularizerBatchNorm Regularizer = "batch_norm"
)

// Regularizers lists all regularizer kinds in display order.
var Regularizers = []Regularizer{
	RegularizerNone, RegularizerL1, RegularizerL2,
	RegularizerDropout, RegularizerBatchNorm,
}

// Optimizer enumerates the supported optimizers.
type Optimizer string

const (
	OptimizerAdam    Optimizer = "adam"
	OptimizerSGD     Optimizer = "sgd"
	OptimizerRMSprop Optimizer = "rmsprop"
	OptimizerAdagrad Optimizer = "adagrad"
	OptimizerAdamW   Optimizer = "adamw"
)

// Optimizers lists all optimizer kinds in display order.
var Optimizers = []Optimizer{
	OptimizerAdam, OptimizerSGD, OptimizerRMSprop,
	OptimizerAdagrad, OptimizerAdamW,
}

// Activation enumerates the supported activation functions.
type Activation string

const (
	ActivationReLU      Activation = "relu"
	ActivationSigmoid   Activation = "sigmoid"
	ActivationTanh      Activation = "tanh"
	ActivationSoftmax   Activation = "softmax"
	ActivationLeakyReLU Activation = "leaky_relu"
	ActivationELU       Activation = "elu"
)

// Activations lists all activation kinds in display order.
var Activations = []Activation{
	ActivationReLU, ActivationSigmoid, ActivationTanh,
	ActivationSoftmax, ActivationLeakyReLU, ActivationELU,
}

// UI-enforced parameter ranges. The backend is the final validator;
// these bounds mirror its slider controls.
const (
	MinLearningRate = 0.001
	MaxLearningRate = 0.1
	MinRegRate      = 0.0001
	MaxRegRate      = 0.01

	DefaultEpochs    = 100
	DefaultBatchSize = 32
)

// TrainingConfig is the immutable payload submitted once per session.
type TrainingConfig struct {
	DatasetID          string      `json:"dataset_id"`
	ModelType          ModelType   `json:"model_type"`
	NumLayers          int         `json:"num_layers"`
	NumNeurons         int         `json:"num_neurons"`
	LearningRate       float64     `json:"learning_rate"`
	RegularizationRate float64     `json:"regularization_rate"`
	TrainTestSplit     float64     `json:"train_test_split"`
	Regularizer        Regularizer `json:"regularizer"`
	Optimizer          Optimizer   `json:"optimizer"`
	Activation         Activation  `json:"activation"`
	Epochs             int         `json:"epochs,omitempty"`
	BatchSize          int         `json:"batch_size,omitempty"`
}

// Validate checks the UI-enforced ranges before submission.
func (c TrainingConfig) Validate() error {
	if c.DatasetID == "" {
		return fmt.Errorf("no dataset selected")
	}
	if c.NumLayers < 1 {
		return fmt.Errorf("num_layers must be >= 1, got %d", c.NumLayers)
	}
	if c.NumNeurons < 1 {
		return fmt.Errorf("num_neurons must be >= 1, got %d", c.NumNeurons)
	}
	if c.LearningRate < MinLearningRate || c.LearningRate > MaxLearningRate {
		return fmt.Errorf("learning_rate %g outside [%g, %g]", c.LearningRate, MinLearningRate, MaxLearningRate)
	}
	if c.RegularizationRate < MinRegRate || c.RegularizationRate > MaxRegRate {
		return fmt.Errorf("regularization_rate %g outside [%g, %g]", c.RegularizationRate, MinRegRate, MaxRegRate)
	}
	if c.TrainTestSplit <= 0 || c.TrainTestSplit >= 1 {
		return fmt.Errorf("train_test_split %g outside (0, 1)", c.TrainTestSplit)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// --- HTTP response types ---

// TrainingResponse is returned by POST /api/train/start.
type TrainingResponse struct {
	SessionID    string `json:"session_id"`
	Message      string `json:"message"`
	ModelSummary string `json:"model_summary"`
	InputShape   []int  `json:"input_shape"`
	OutputShape  []int  `json:"output_shape"`
}

// StatusResponse is returned by GET /api/train/{id}/status.
type StatusResponse struct {
	SessionID string               `json:"session_id"`
	Status    string               `json:"status"`
	History   map[string][]float64 `json:"history"`
}

// PredictResponse is returned by POST /api/train/{id}/predict.
type PredictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	Timestamp      string `json:"timestamp"`
}

// errorBody is the structured error the backend attaches to non-2xx
// responses.
type errorBody struct {
	Detail string `json:"detail"`
}
