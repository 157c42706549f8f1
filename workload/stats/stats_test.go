package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/stats"
)

func TestSummaryNoSuccessfulTransaction(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.InvalidStep, Step: "bond"}, false)
	require.Equal(t, "No successful transaction", s.Summary())
}

func TestSummaryDoneSuccessfully(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "faucet-transfer"}, false)
	require.Equal(t, "Done successfully", s.Summary())
}

func TestSummaryNonFatalFailures(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "bond"}, false)
	s.Record(classify.Outcome{Kind: classify.Execution, Step: "bond"}, false)
	require.Equal(t, "Non-fatal failures happened", s.Summary())
}

func TestSummaryAcceptableFailureIsNotUnexpected(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "ibc-transfer-send"}, false)
	s.Record(classify.Outcome{Kind: classify.Execution, Step: "ibc-transfer-send"}, true)
	require.Equal(t, "Done successfully", s.Summary())

	totals := s.Totals()
	require.EqualValues(t, 1, totals.Acceptable)
	require.EqualValues(t, 0, totals.Unexpected)
}

func TestSummaryFatalTakesPriority(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "bond"}, false)
	s.Record(classify.Outcome{Kind: classify.Fatal, Step: "bond"}, false)
	s.Record(classify.Outcome{Kind: classify.Execution, Step: "bond"}, false)
	require.Equal(t, "Fatal failures happened", s.Summary())
}

func TestRecordProbeOutcomeMarksFatal(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "bond"}, false)
	require.Equal(t, "Done successfully", s.Summary())

	s.RecordProbeOutcome("HeightCheck", &classify.Outcome{Kind: classify.Fatal, Step: "HeightCheck"}, 10*time.Millisecond)
	require.Equal(t, "Fatal failures happened", s.Summary())
}

func TestRecordProbeOutcomeNilIsNotFatal(t *testing.T) {
	s := stats.New(nil)
	s.Record(classify.Outcome{Kind: classify.Success, Step: "bond"}, false)
	s.RecordProbeOutcome("HeightCheck", nil, 5*time.Millisecond)
	require.Equal(t, "Done successfully", s.Summary())
}
