package bot

import (
	"fmt"
	"strconv"
	"strings"

	"chart-oracle/internal/domain"
)

// The analysis result rides inside the detail button's callback data, so the
// detail handler is stateless: it rebuilds (trend, confidence) purely from the
// payload. The separator cannot occur in either field: trend is one of two
// literal tokens and confidence is formatted with a fixed two-decimal form.
const payloadSeparator = "|"

func EncodePayload(result domain.AnalysisResult) string {
	return string(result.Trend) + payloadSeparator + strconv.FormatFloat(result.Confidence, 'f', 2, 64)
}

func DecodePayload(data string) (domain.AnalysisResult, error) {
	parts := strings.Split(data, payloadSeparator)
	if len(parts) != 2 {
		return domain.AnalysisResult{}, fmt.Errorf("malformed payload: expected 2 fields, got %d", len(parts))
	}

	trend, ok := domain.ParseTrend(parts[0])
	if !ok {
		return domain.AnalysisResult{}, fmt.Errorf("malformed payload: unknown trend %q", parts[0])
	}

	confidence, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("malformed payload: bad confidence %q: %w", parts[1], err)
	}
	if confidence < 0 || confidence > 100 {
		return domain.AnalysisResult{}, fmt.Errorf("malformed payload: confidence %.2f out of range", confidence)
	}

	return domain.AnalysisResult{Trend: trend, Confidence: confidence}, nil
}
