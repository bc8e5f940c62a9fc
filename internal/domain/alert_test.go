package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

func TestAlertShouldTrigger(t *testing.T) {
	tests := []struct {
		name  string
		alert domain.Alert
		prob  float64
		want  bool
	}{
		{"above crosses", domain.Alert{Condition: domain.AlertAbove, Threshold: 60}, 61, true},
		{"above boundary", domain.Alert{Condition: domain.AlertAbove, Threshold: 60}, 60, true},
		{"above not reached", domain.Alert{Condition: domain.AlertAbove, Threshold: 60}, 59.9, false},
		{"below crosses", domain.Alert{Condition: domain.AlertBelow, Threshold: 30}, 12, true},
		{"below boundary", domain.Alert{Condition: domain.AlertBelow, Threshold: 30}, 30, true},
		{"below not reached", domain.Alert{Condition: domain.AlertBelow, Threshold: 30}, 31, false},
		{"already triggered", domain.Alert{Condition: domain.AlertAbove, Threshold: 10, Triggered: true}, 90, false},
		{"unknown condition", domain.Alert{Condition: "sideways", Threshold: 10}, 90, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alert.ShouldTrigger(tt.prob))
		})
	}
}

func TestParseHistoryRange(t *testing.T) {
	assert.Equal(t, domain.Range24h, domain.ParseHistoryRange("24h"))
	assert.Equal(t, domain.RangeAll, domain.ParseHistoryRange("all"))
	assert.Equal(t, domain.Range7d, domain.ParseHistoryRange(""))
	assert.Equal(t, domain.Range7d, domain.ParseHistoryRange("1y"))
}
