package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertQuery(t *testing.T) {
	q := upsertQuery("suppliers", []string{"id", "name", "lead_time_days"})
	assert.Equal(t,
		"INSERT INTO suppliers (id, name, lead_time_days) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, lead_time_days = EXCLUDED.lead_time_days, updated_at = NOW()",
		q)
}

func TestWeekdayArray(t *testing.T) {
	assert.Equal(t, "{Montag,Donnerstag}", weekdayArray("Montag| Donnerstag|"))
	assert.Equal(t, "{}", weekdayArray(""))
}
