package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vetraconnect/vetra/pkg/model"
	"github.com/vetraconnect/vetra/pkg/slogx"
	"golang.org/x/time/rate"
)

const testVin = "VMOCKAA0AA000000"

type recordedRequest struct {
	method string
	uri    string
	auth   string
	body   []byte
}

// fakeAPI answers scripted responses keyed by "METHOD uri" and records
// every request it sees. Unscripted requests get a 404.
type fakeAPI struct {
	srv       *httptest.Server
	responses map[string]string

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeAPI(t *testing.T, responses map[string]string) *fakeAPI {
	t.Helper()

	f := &fakeAPI{responses: responses}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			method: r.Method,
			uri:    r.URL.RequestURI(),
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		f.mu.Unlock()

		response, ok := f.responses[r.Method+" "+r.URL.RequestURI()]
		if !ok {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	recorded := f.recorded()
	require.NotEmpty(t, recorded)
	return recorded[len(recorded)-1]
}

type staticTokens string

func (s staticTokens) GetAccessToken(context.Context) (string, error) {
	return string(s), nil
}

type failingTokens struct{}

func (failingTokens) GetAccessToken(context.Context) (string, error) {
	return "", errors.New("no session")
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	return New(staticTokens("test-token"), Config{BaseURL: f.srv.URL, Log: slogx.Discard()})
}

func TestUser(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET /api/v1/users": `{
			"id": "b8bc126c-ee36-402b-8723-2c1c3dff8dec",
			"email": "user@example.com",
			"firstName": "Jane",
			"preferredLanguage": "en"
		}`,
	})
	c := newTestClient(t, f)

	user, err := c.User(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b8bc126c-ee36-402b-8723-2c1c3dff8dec", user.ID)
	require.Equal(t, "user@example.com", user.Email)
	require.Equal(t, "Bearer test-token", f.last(t).auth)
}

func TestCharging(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET /api/v1/charging/" + testVin: `{
			"carCapturedTimestamp": "2025-05-11T07:35:18Z",
			"errors": [],
			"isVehicleInSavedLocation": false,
			"settings": {
				"availableChargeModes": ["MANUAL"],
				"batterySupport": "NOT_ALLOWED",
				"chargingCareMode": "ACTIVATED",
				"maxChargeCurrentAc": "MAXIMUM",
				"preferredChargeMode": "MANUAL",
				"targetStateOfChargeInPercent": 80
			},
			"status": {
				"battery": {
					"remainingCruisingRangeInMeters": 355000,
					"stateOfChargeInPercent": 79
				},
				"chargeType": "AC",
				"remainingTimeToFullyChargedInMinutes": 130,
				"state": "CONNECT_CABLE"
			}
		}`,
	})
	c := newTestClient(t, f)

	charging, err := c.Charging(context.Background(), testVin)
	require.NoError(t, err)
	require.Equal(t, model.ChargeModeManual, charging.Settings.PreferredChargeMode)
	require.Equal(t, 80, charging.Settings.TargetStateOfChargeInPercent)
	require.NotNil(t, charging.Status)
	require.Equal(t, model.ChargingStateConnectCable, charging.Status.State)
	require.Equal(t, 79, charging.Status.Battery.StateOfChargeInPercent)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET " + "/api" + infoPath(testVin): `{
			"vin": "` + testVin + `",
			"name": "Vetra Ion",
			"state": "ACTIVATED",
			"specification": {
				"title": "Vetra Ion",
				"model": "Ion",
				"modelYear": "2025",
				"battery": {"capacityInKWh": 82}
			},
			"capabilities": {
				"capabilities": [
					{"id": "AIR_CONDITIONING", "statuses": []},
					{"id": "CHARGING", "statuses": ["DEACTIVATED_BY_USER"]}
				]
			}
		}`,
	})
	c := newTestClient(t, f)

	info, err := c.Info(context.Background(), testVin)
	require.NoError(t, err)
	require.Equal(t, testVin, info.Vin)
	require.Equal(t, model.VehicleActivated, info.State)
	require.Equal(t, 82, info.Specification.Battery.CapacityInKWh)
	require.True(t, info.IsCapabilityAvailable(model.CapabilityAirConditioning))
	require.True(t, info.HasCapability(model.CapabilityCharging))
	require.False(t, info.IsCapabilityAvailable(model.CapabilityCharging))

	// The garage endpoints filter on the supported platform generations.
	require.Contains(t, f.last(t).uri, "connectivityGenerations=MOD4")
}

func TestListVehicles(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET " + "/api" + garagePath(): `{
			"vehicles": [
				{"vin": "` + testVin + `", "name": "Vetra Ion", "title": "Vetra Ion", "state": "ACTIVATED"},
				{"vin": "VMOCKAA0AA000001", "name": "Vetra Arc", "title": "Vetra Arc", "state": "ACTIVATED"}
			]
		}`,
	})
	c := newTestClient(t, f)

	vins, err := c.ListVehicles(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{testVin, "VMOCKAA0AA000001"}, vins)
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, nil)
	c := newTestClient(t, f)

	_, err := c.Status(context.Background(), testVin)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, statusErr.URL, "/api/v2/vehicle-status/"+testVin)
	require.Contains(t, string(statusErr.Body), "not found")
}

func TestInvalidResponse(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET /api/v1/users": `<html>load balancer says hi</html>`,
	})
	c := newTestClient(t, f)

	_, err := c.User(context.Background())

	var invalidErr *InvalidResponseError
	require.ErrorAs(t, err, &invalidErr)
	require.Contains(t, string(invalidErr.Body), "load balancer")
}

func TestTokenFailureStopsRequest(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, nil)
	c := New(failingTokens{}, Config{BaseURL: f.srv.URL, Log: slogx.Discard()})

	_, err := c.User(context.Background())
	require.Error(t, err)
	require.Empty(t, f.recorded())
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{"GET /api/v1/users": `{"id": "u"}`})
	c := New(staticTokens("test-token"), Config{
		BaseURL: f.srv.URL,
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		Log:     slogx.Discard(),
	})

	_, err := c.User(context.Background())
	require.NoError(t, err)

	// The burst is spent, the next permit is an hour away. The limiter has
	// to fail fast instead of letting the deadline expire.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.User(ctx)
	require.Error(t, err)
	require.Len(t, f.recorded(), 1)
}
