package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/app"
	"github.com/ayusman/shifumi/internal/capture"
	"github.com/ayusman/shifumi/internal/classifier"
	"github.com/ayusman/shifumi/internal/detector"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/server"
	"github.com/ayusman/shifumi/internal/store"
)

type gameState struct {
	game.Snapshot
	RoundOptions []int `json:"round_options"`
}

func getJSON(t *testing.T, client *http.Client, url string, v interface{}) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, url)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// fetchJSON is getJSON for use inside Eventually conditions.
func fetchJSON(client *http.Client, url string, v interface{}) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(v) == nil
}

func post(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestE2E_CompleteMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer s.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(90, 120, 150, 0))
	defer frame.Close()

	det := detector.NewMockDetector()
	det.SetHands(detector.RockLandmarks())
	model := classifier.NewMockClassifier(gesture.Classification{Label: gesture.Rock, Confidence: 0.9})

	cfg := game.DefaultConfig()
	cfg.RoundOptions = []int{1, 3}
	machine, err := game.NewMachine(cfg,
		game.WithBot(game.NewSequenceBot(gesture.Scissors)),
		game.WithTickInterval(250*time.Millisecond),
	)
	require.NoError(t, err)
	defer machine.Close()

	winners := make(chan game.Winner, 1)
	machine.OnMatchEnd(func(w game.Winner) { winners <- w })

	application, err := app.New(app.Config{
		Camera:   capture.NewMockCamera([]gocv.Mat{frame}, true),
		Detector: det,
		Model:    func() (classifier.Classifier, error) { return model, nil },
		Machine:  machine,
		Store:    s,
	})
	require.NoError(t, err)
	require.NoError(t, application.Start(context.Background()))
	defer application.Stop()

	ts := httptest.NewServer(server.New(server.Config{Store: s, Game: application}))
	defer ts.Close()
	client := ts.Client()

	require.Eventually(t, func() bool {
		var status app.Status
		return fetchJSON(client, ts.URL+"/api/status", &status) && status.State == app.StateReady
	}, 5*time.Second, 20*time.Millisecond)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/game/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp := post(t, client, ts.URL+"/api/game", `{"rounds":1}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post(t, client, ts.URL+"/api/game/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state gameState
	require.Eventually(t, func() bool {
		return fetchJSON(client, ts.URL+"/api/game", &state) && state.Phase == game.PhaseResult
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, gesture.Rock, state.PlayerMove)
	assert.Equal(t, gesture.Scissors, state.BotMove)
	assert.Equal(t, game.PlayerWins, state.RoundOutcome)
	assert.Equal(t, 1, state.PlayerScore)
	assert.Positive(t, det.Calls())

	// The crop seen during the round can be kept as a training sample.
	resp = post(t, client, ts.URL+"/api/samples", `{"gesture":"Rock"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	counts := map[string]int{}
	getJSON(t, client, ts.URL+"/api/samples/counts", &counts)
	assert.Equal(t, 1, counts["Rock"])

	resp = post(t, client, ts.URL+"/api/game/next", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	getJSON(t, client, ts.URL+"/api/game", &state)
	assert.Equal(t, game.PhaseFinished, state.Phase)
	assert.Equal(t, game.WinnerPlayer, state.FinalWinner)

	select {
	case w := <-winners:
		assert.Equal(t, game.WinnerPlayer, w)
	case <-time.After(time.Second):
		t.Fatal("match end callback not called")
	}

	var end game.MatchResult
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for end.MatchID == "" {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == server.MessageMatchEnd {
			require.NoError(t, json.Unmarshal(msg.Data, &end))
		}
	}
	assert.Equal(t, state.MatchID, end.MatchID)
	assert.Equal(t, game.WinnerPlayer, end.Winner)

	// Sensing pauses once the match is over, so no crop is left to save.
	assert.Eventually(t, func() bool {
		resp, err := client.Post(ts.URL+"/api/samples", "application/json", strings.NewReader(`{"gesture":"Rock"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusConflict
	}, 5*time.Second, 50*time.Millisecond)
}

func TestE2E_StartBeforeReady(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	machine, err := game.NewMachine(game.DefaultConfig())
	require.NoError(t, err)
	defer machine.Close()

	release := make(chan struct{})
	application, err := app.New(app.Config{
		Camera:   capture.NewMockCamera([]gocv.Mat{frame}, true),
		Detector: detector.NewMockDetector(),
		Model: func() (classifier.Classifier, error) {
			<-release
			return classifier.NewMockClassifier(), nil
		},
		Machine: machine,
	})
	require.NoError(t, err)
	require.NoError(t, application.Start(context.Background()))
	defer application.Stop()
	defer close(release)

	ts := httptest.NewServer(server.New(server.Config{Game: application}))
	defer ts.Close()

	resp := post(t, ts.Client(), ts.URL+"/api/game/start", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, game.PhaseWaiting, machine.Phase())
}
