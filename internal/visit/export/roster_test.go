package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"visitreg/internal/visit/models"
	"visitreg/internal/visit/service"
	vmodels "visitreg/internal/visitor/models"
)

func entry(paddock string) service.RosterEntry {
	perth := time.FixedZone("AWST", 8*60*60)
	return service.RosterEntry{
		Visit: &models.Visit{
			Site:      models.SiteRidgefield,
			Arrival:   time.Date(2022, 12, 27, 9, 0, 0, 0, perth),
			Departure: time.Date(2022, 12, 28, 17, 0, 0, 0, perth),
			Overnight: true,
			Extra:     models.FarmFields{Paddock: paddock},
		},
		Profile: &vmodels.Profile{
			Visitor: &vmodels.Visitor{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
			Role:    &vmodels.Role{Name: "Contractor"},
			Contact: &vmodels.EmergencyContact{Name: "Grace", Phone: "0400 111 222", Relationship: "Friend"},
		},
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, "Paddock", Columns(models.SiteRidgefield)[len(rosterHeader)])
	assert.Len(t, Columns(models.SiteGingin), len(rosterHeader))
}

func TestWriteRoster(t *testing.T) {
	perth := time.FixedZone("AWST", 8*60*60)
	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, models.SiteRidgefield, []service.RosterEntry{entry("Mating Pots 0.71")}, perth))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ridgefield")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First Name", rows[0][0])
	assert.Equal(t, []string{
		"Ada", "Lovelace", "Contractor", "ada@example.com", "",
		"2022-12-27 09:00", "2022-12-28 17:00", "Yes",
		"Grace", "0400 111 222", "Friend", "Mating Pots 0.71",
	}, rows[1])
}
