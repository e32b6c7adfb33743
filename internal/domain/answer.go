package domain

// Strategy names the answering path chosen for a follow-up question.
type Strategy string

const (
	StrategySemantic    Strategy = "semantic"
	StrategyFullContext Strategy = "full_context"
	StrategyLegacy      Strategy = "legacy"
)

// RetrievalMetrics describes the retrieval step behind a semantic answer.
// AverageRelevance is only meaningful relative to the one question that
// produced it.
type RetrievalMetrics struct {
	ChunksUsed       int     `json:"chunks_used"`
	TotalAvailable   int     `json:"total_available"`
	AverageRelevance float64 `json:"average_relevance"`
	Degraded         bool    `json:"degraded,omitempty"`
}

// Answer is the result of a follow-up question.
type Answer struct {
	Text     string            `json:"text"`
	Strategy Strategy          `json:"strategy"`
	Metrics  *RetrievalMetrics `json:"metrics,omitempty"`
}

// StrategyConfig is the set of toggles that routes every orchestration
// decision. It is read before each call and passed by value; persistence
// of the toggles belongs to an external configuration collaborator.
type StrategyConfig struct {
	UseAdvancedOrchestration bool `json:"use_advanced_orchestration"`
	EnableBatchProcessing    bool `json:"enable_batch_processing"`
	EnableAdvancedPrompts    bool `json:"enable_advanced_prompts"`
	EnableSemanticRetrieval  bool `json:"enable_semantic_retrieval"`
}

// DefaultStrategyConfig biases toward the richest available behavior.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		UseAdvancedOrchestration: true,
		EnableBatchProcessing:    true,
		EnableAdvancedPrompts:    true,
		EnableSemanticRetrieval:  true,
	}
}
