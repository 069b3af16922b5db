package handlers

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// The activity feed is a cosmetic simulation for the marketing pages:
// randomized social-proof blurbs and a fake queue position. None of it is
// derived from real backend state and none of it may feed back into the
// access policy.

var (
	activityCountries = []string{"USA", "UK", "Germany", "Brazil", "France", "Canada", "Australia", "Japan", "India", "Turkey"}
	activityContent   = []string{"Reddit Story", "AI Drama", "Side Hustle", "Uncanny Story", "Viral Script"}
)

type activityItem struct {
	Message    string `json:"message"`
	MinutesAgo int    `json:"minutes_ago"`
}

type activityResponse struct {
	Items         []activityItem `json:"items"`
	QueuePosition int            `json:"queue_position"`
	WaitEstimate  int            `json:"wait_estimate_seconds"`
	Simulated     bool           `json:"simulated"`
}

// Activity returns the randomized social-proof feed. The response is
// always flagged simulated.
func (a *App) Activity(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, simulatedActivity(rand.New(rand.NewSource(time.Now().UnixNano()))))
}

func simulatedActivity(rng *rand.Rand) activityResponse {
	const itemCount = 4
	items := make([]activityItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		country := activityCountries[rng.Intn(len(activityCountries))]
		content := activityContent[rng.Intn(len(activityContent))]
		templates := []string{
			"Someone from %s just went viral with a %s!",
			"A creator from %s just generated a %s!",
			"New viral hit from %s - %s!",
		}
		items = append(items, activityItem{
			Message:    fmt.Sprintf(templates[rng.Intn(len(templates))], country, content),
			MinutesAgo: rng.Intn(30) + 1,
		})
	}
	return activityResponse{
		Items:         items,
		QueuePosition: rng.Intn(40) + 3,
		WaitEstimate:  rng.Intn(90) + 30,
		Simulated:     true,
	}
}
