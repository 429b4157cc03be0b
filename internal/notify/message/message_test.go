package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/notify/models"
	visitmodels "visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
)

func farmJob() *models.Job {
	paddock := "Mating Pots 0.71"
	return &models.Job{
		VisitID:     id.VisitID(uuid.New()),
		Site:        visitmodels.SiteRidgefield,
		VisitorName: "Jane Doe",
		Role:        "UWA Student",
		Arrival:     time.Date(2022, 12, 27, 9, 0, 0, 0, time.UTC),
		Departure:   time.Date(2022, 12, 28, 17, 30, 0, 0, time.UTC),
		Overnight:   true,
		Paddock:     &paddock,
		Contact:     &vmodels.EmergencyContact{Name: "John Doe", Phone: "0400 000 000", Relationship: "Partner"},
	}
}

func TestRender(t *testing.T) {
	t.Run("farm visit", func(t *testing.T) {
		msg, err := Render(farmJob(), []string{"manager@uwa.edu.au"})
		require.NoError(t, err)

		assert.Equal(t, "New visitor at Ridgefield", msg.Subject)
		assert.Equal(t, []string{"manager@uwa.edu.au"}, msg.To)
		assert.Contains(t, msg.Markdown, "| Visitor | Jane Doe |")
		assert.Contains(t, msg.Markdown, "| Arrival | Tue 27 Dec 2022 09:00 |")
		assert.Contains(t, msg.Markdown, "| Paddock | Mating Pots 0.71 |")
		assert.Contains(t, msg.Markdown, "| Relationship | Partner |")
		assert.Contains(t, msg.HTML, "<table>")
		assert.Contains(t, msg.HTML, "<td>Mating Pots 0.71</td>")
		assert.Contains(t, msg.HTML, "<strong>Ridgefield</strong>")
	})

	t.Run("non-farm site has no paddock row", func(t *testing.T) {
		job := farmJob()
		job.Site = visitmodels.SiteGingin
		job.Paddock = nil
		job.Contact = nil

		msg, err := Render(job, nil)
		require.NoError(t, err)
		assert.Equal(t, "New visitor at Gingin", msg.Subject)
		assert.NotContains(t, msg.Markdown, "Paddock")
		assert.NotContains(t, msg.Markdown, "Emergency contact")
	})

	t.Run("visitor values are escaped", func(t *testing.T) {
		job := farmJob()
		job.VisitorName = "<script>alert(1)</script> | *bold*"

		msg, err := Render(job, nil)
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "<script>")
		assert.NotContains(t, msg.HTML, "<em>bold</em>")
	})
}

func TestRender_FromRegisteredVisit(t *testing.T) {
	day := visitmodels.DateOf(time.Date(2022, 12, 23, 0, 0, 0, 0, time.UTC))
	sameDay := visitmodels.VisitFields{
		ArrivalDate:   day,
		ArrivalTime:   visitmodels.Clock{Hour: 9},
		DepartureDate: day,
		DepartureTime: visitmodels.Clock{Hour: 16},
		Extra:         visitmodels.FarmFields{Paddock: "  "},
	}
	profile := &vmodels.Profile{Visitor: &vmodels.Visitor{FirstName: "Jane", LastName: "Doe"}}
	now := time.Date(2022, 12, 20, 8, 0, 0, 0, time.UTC)

	for _, site := range []visitmodels.SiteKind{visitmodels.SiteGingin, visitmodels.SiteRidgefield} {
		t.Run(string(site)+" with blank paddock", func(t *testing.T) {
			visit := visitmodels.NewVisit(id.VisitID(uuid.New()), id.VisitorID(uuid.New()), site, sameDay, time.UTC, now)
			job := models.NewJob(visit, profile, now)
			assert.Nil(t, job.Paddock)

			msg, err := Render(job, []string{"manager@uwa.edu.au"})
			require.NoError(t, err)
			assert.NotContains(t, msg.Markdown, "Paddock")
		})
	}

	t.Run("paddock on a site that does not collect one is dropped", func(t *testing.T) {
		visit := visitmodels.NewVisit(id.VisitID(uuid.New()), id.VisitorID(uuid.New()), visitmodels.SiteGingin, sameDay, time.UTC, now)
		visit.Extra = visitmodels.FarmFields{Paddock: "North"}
		job := models.NewJob(visit, profile, now)
		assert.Nil(t, job.Paddock)
	})
}
