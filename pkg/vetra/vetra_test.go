package vetra

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vetraconnect/vetra/pkg/auth"
	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/model"
	"github.com/vetraconnect/vetra/pkg/mqtt"
	"github.com/vetraconnect/vetra/pkg/rest"
	"github.com/vetraconnect/vetra/pkg/slogx"
)

const (
	testVin    = "VMOCKAA0AA000000"
	testUserID = "b8bc126c-ee36-402b-8723-2c1c3dff8dec"
	testEmail  = "driver@example.com"

	generations = "connectivityGenerations=MOD1&connectivityGenerations=MOD2&connectivityGenerations=MOD3&connectivityGenerations=MOD4"
)

type recordedRequest struct {
	method string
	uri    string
	auth   string
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
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			method: r.Method,
			uri:    r.URL.RequestURI(),
			auth:   r.Header.Get("Authorization"),
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

func (f *fakeAPI) uris() []string {
	var uris []string
	for _, r := range f.recorded() {
		uris = append(uris, r.method+" "+r.uri)
	}
	return uris
}

func (f *fakeAPI) count(key string) int {
	n := 0
	for _, uri := range f.uris() {
		if uri == key {
			n++
		}
	}
	return n
}

// testSession returns a session whose access token stays valid for the
// whole test, so no request ever reaches the identity provider.
func testSession(t *testing.T) auth.Session {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return auth.Session{AccessToken: token, RefreshToken: "refresh-1", IDToken: "id-1"}
}

func infoBody(capabilities ...model.CapabilityID) string {
	entries := make([]string, 0, len(capabilities))
	for _, id := range capabilities {
		entries = append(entries, fmt.Sprintf(`{"id":%q,"statuses":[]}`, id))
	}
	return fmt.Sprintf(
		`{"vin":%q,"name":"Elaro","state":"ACTIVATED","specification":{"title":"Vetra Elaro"},"capabilities":{"capabilities":[%s]}}`,
		testVin, strings.Join(entries, ","))
}

// standardResponses scripts every read endpoint with consistent values:
// an electric vehicle at 40% charge with 180 km of range.
func standardResponses(capabilities ...model.CapabilityID) map[string]string {
	responses := make(map[string]string)
	responses["GET /v1/users"] = fmt.Sprintf(`{"id":%q,"email":%q}`, testUserID, testEmail)
	responses["GET /v2/garage?"+generations] = fmt.Sprintf(`{"vehicles":[{"vin":%q,"name":"Elaro","title":"Vetra Elaro"}]}`, testVin)
	responses["GET /v2/garage/vehicles/"+testVin+"?"+generations] = infoBody(capabilities...)
	responses["GET /v3/vehicle-maintenance/vehicles/"+testVin] = `{}`
	responses["GET /v1/charging/"+testVin] = `{"settings":{"availableChargeModes":["MANUAL"]},"status":{"battery":{"stateOfChargeInPercent":40,"remainingCruisingRangeInMeters":180000},"state":"READY_FOR_CHARGING","remainingTimeToFullyChargedInMinutes":90}}`
	responses["GET /v2/vehicle-status/"+testVin] = `{}`
	responses["GET /v2/vehicle-status/"+testVin+"/driving-range"] = `{"carType":"electric","totalRangeInKm":180,"primaryEngineRange":{"engineType":"electric","currentSoCInPercent":40,"remainingRangeInKm":180}}`
	responses["GET /v2/air-conditioning/"+testVin] = `{}`
	responses["POST /v1/charging/"+testVin+"/start"] = `{}`
	return responses
}

func newTestClient(t *testing.T, api *fakeAPI, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		IdentityURL:   "http://127.0.0.1:1",
		APIBase:       api.srv.URL,
		Broker:        "tcp://127.0.0.1:1",
		DisableEvents: true,
		Log:           slogx.Discard(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)
	c.auth.Restore(testEmail, "hunter2", testSession(t))
	return c
}

func TestResumeWithoutEventsSkipsNetwork(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	session := testSession(t)
	require.NoError(t, c.Resume(context.Background(), testEmail, "hunter2", session))
	require.Empty(t, api.recorded())

	got, err := c.Session()
	require.NoError(t, err)
	require.Equal(t, session, got)

	_, err = c.User(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer "+session.AccessToken, api.recorded()[0].auth)
}

func TestUserIsCached(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	first, err := c.User(context.Background())
	require.NoError(t, err)
	second, err := c.User(context.Background())
	require.NoError(t, err)

	require.Equal(t, testUserID, first.ID)
	require.Equal(t, first, second)
	require.Equal(t, 1, api.count("GET /v1/users"))
}

func TestLoadVehicleFetchesByCapability(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses(model.CapabilityState, model.CapabilityCharging))
	c := newTestClient(t, api)

	vehicle, err := c.LoadVehicle(context.Background(), testVin)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{
		"GET /v2/garage/vehicles/" + testVin + "?" + generations,
		"GET /v3/vehicle-maintenance/vehicles/" + testVin,
		"GET /v1/charging/" + testVin,
		"GET /v2/vehicle-status/" + testVin,
		"GET /v2/vehicle-status/" + testVin + "/driving-range",
	}, api.uris())

	require.NotNil(t, vehicle.Info)
	require.NotNil(t, vehicle.Charging)
	require.NotNil(t, vehicle.Status)
	require.NotNil(t, vehicle.DrivingRange)
	require.Nil(t, vehicle.AirConditioning)
	require.True(t, vehicle.HasCapability(model.CapabilityCharging))
	require.False(t, vehicle.HasCapability(model.CapabilityAirConditioning))
}

func TestLoadVehicleSkipsFreshHealth(t *testing.T) {
	t.Parallel()

	responses := standardResponses(model.CapabilityVehicleHealth)
	capturedAt := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	responses["GET /v1/vehicle-health-report/warning-lights/"+testVin] =
		fmt.Sprintf(`{"warningLights":[],"mileageInKm":12000,"capturedAt":%q}`, capturedAt)

	api := newFakeAPI(t, responses)
	c := newTestClient(t, api)

	_, err := c.LoadVehicle(context.Background(), testVin)
	require.NoError(t, err)
	_, err = c.LoadVehicle(context.Background(), testVin)
	require.NoError(t, err)

	require.Equal(t, 2, api.count("GET /v3/vehicle-maintenance/vehicles/"+testVin))
	require.Equal(t, 1, api.count("GET /v1/vehicle-health-report/warning-lights/"+testVin))
}

func TestLoadVehicleContinuesPastCapabilityFailure(t *testing.T) {
	t.Parallel()

	responses := standardResponses(model.CapabilityAirConditioning, model.CapabilityCharging)
	delete(responses, "GET /v2/air-conditioning/"+testVin)

	api := newFakeAPI(t, responses)
	c := newTestClient(t, api)

	vehicle, err := c.LoadVehicle(context.Background(), testVin)
	require.NoError(t, err)
	require.Nil(t, vehicle.AirConditioning)
	require.NotNil(t, vehicle.Charging)
}

func TestVehicleUnknownVin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	_, err := c.Vehicle("WVETRA000NEVER001")
	require.ErrorIs(t, err, ErrUnknownVehicle)
}

func TestEventFeaturesDisabled(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	require.ErrorIs(t, c.SubscribeEvents(func(event.Event) {}), ErrEventsDisabled)
	_, err := c.WaitForOperation(event.OperationStartCharging)
	require.ErrorIs(t, err, ErrEventsDisabled)
}

func TestCommandWithoutStreamSendsOnly(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	require.NoError(t, c.StartCharging(context.Background(), testVin))
	require.Equal(t, []string{"POST /v1/charging/" + testVin + "/start"}, api.uris())
}

func TestCommandTimesOutWithoutCompletionEvent(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api, func(cfg *Config) {
		cfg.DisableEvents = false
		cfg.OperationTimeout = 50 * time.Millisecond
	})

	err := c.StartCharging(context.Background(), testVin)
	require.ErrorIs(t, err, mqtt.ErrOperationTimeout)
	require.Equal(t, 1, api.count("POST /v1/charging/"+testVin+"/start"))
}

func TestCommandReturnsRESTFailureWithoutWaiting(t *testing.T) {
	t.Parallel()

	responses := standardResponses()
	delete(responses, "POST /v1/charging/"+testVin+"/start")

	api := newFakeAPI(t, responses)
	c := newTestClient(t, api, func(cfg *Config) {
		cfg.DisableEvents = false
		cfg.OperationTimeout = 200 * time.Millisecond
	})

	err := c.StartCharging(context.Background(), testVin)

	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.NotErrorIs(t, err, mqtt.ErrOperationTimeout)
}

func TestServiceEventTriggersRefresh(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api, func(cfg *Config) { cfg.DisableEvents = false })

	_, err := c.LoadPartialVehicle(context.Background(), testVin)
	require.NoError(t, err)

	var updates atomic.Int32
	c.SubscribeUpdates(testVin, func() { updates.Add(1) })

	c.onEvent(&event.ServiceEvent{
		Meta: event.Meta{UserID: testUserID, Vin: testVin, Type: event.TypeService},
		Name: event.ServiceClimatisationCompleted,
		Data: event.ServiceEventBaseData{UserID: testUserID, Vin: testVin},
	})

	require.Eventually(t, func() bool {
		return api.count("GET /v2/air-conditioning/"+testVin) == 1 && updates.Load() > 0
	}, time.Second, 10*time.Millisecond)

	vehicle, err := c.Vehicle(testVin)
	require.NoError(t, err)
	require.NotNil(t, vehicle.AirConditioning)
}

func TestServiceEventForUnloadedVehicleIsIgnored(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api, func(cfg *Config) { cfg.DisableEvents = false })

	_, err := c.LoadPartialVehicle(context.Background(), testVin)
	require.NoError(t, err)
	seeded := len(api.recorded())

	c.onEvent(&event.ServiceEvent{
		Meta: event.Meta{UserID: testUserID, Vin: "WVETRA000NEVER001", Type: event.TypeService},
		Name: event.ServiceClimatisationCompleted,
		Data: event.ServiceEventBaseData{},
	})

	time.Sleep(50 * time.Millisecond)
	require.Len(t, api.recorded(), seeded)
}

func TestChargingEventAppliesOverlay(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses(model.CapabilityCharging, model.CapabilityState))
	c := newTestClient(t, api, func(cfg *Config) { cfg.DisableEvents = false })

	_, err := c.LoadPartialVehicle(context.Background(), testVin,
		model.CapabilityCharging, model.CapabilityState)
	require.NoError(t, err)

	before, err := c.Vehicle(testVin)
	require.NoError(t, err)

	var updates atomic.Int32
	c.SubscribeUpdates(testVin, func() { updates.Add(1) })

	c.onEvent(&event.ServiceEvent{
		Meta:     event.Meta{UserID: testUserID, Vin: testVin, Type: event.TypeService},
		Producer: "VETRA_MHUB",
		Name:     event.ServiceChangeSoc,
		Data: event.ChargingData{
			ServiceEventBaseData: event.ServiceEventBaseData{UserID: testUserID, Vin: testVin},
			State:                model.ChargingStateCharging,
			Soc:                  model.NewFlexInt(55),
			ChargedRange:         model.NewFlexInt(120),
			TimeToFinish:         model.NewFlexInt(30),
		},
	})

	require.Eventually(t, func() bool {
		vehicle, err := c.Vehicle(testVin)
		if err != nil || vehicle.Charging == nil || vehicle.Charging.Status == nil {
			return false
		}
		return vehicle.Charging.Status.Battery.StateOfChargeInPercent == 55
	}, time.Second, 10*time.Millisecond)

	vehicle, err := c.Vehicle(testVin)
	require.NoError(t, err)
	status := vehicle.Charging.Status
	require.Equal(t, 120000, status.Battery.RemainingCruisingRangeInMeters)
	require.Equal(t, 30, status.RemainingTimeToFullyChargedInMinutes)
	require.Equal(t, model.ChargingStateCharging, status.State)
	require.Equal(t, 55, vehicle.DrivingRange.PrimaryEngineRange.CurrentSoCInPercent)
	require.Equal(t, 120, vehicle.DrivingRange.PrimaryEngineRange.RemainingRangeInKm)
	require.Positive(t, updates.Load())

	// Snapshots taken before the event keep the values they were taken with.
	require.Equal(t, 40, before.Charging.Status.Battery.StateOfChargeInPercent)
	require.Equal(t, 40, before.DrivingRange.PrimaryEngineRange.CurrentSoCInPercent)
}

func TestOverlayDrivingRangeTargetsElectricEngine(t *testing.T) {
	t.Parallel()

	data := event.ChargingData{Soc: model.NewFlexInt(70), ChargedRange: model.NewFlexInt(200)}

	t.Run("hybrid updates the secondary engine", func(t *testing.T) {
		t.Parallel()

		ranges := model.DrivingRange{
			PrimaryEngineRange:   model.EngineRange{EngineType: model.EngineTypeGasoline, RemainingRangeInKm: 400},
			SecondaryEngineRange: &model.EngineRange{EngineType: model.EngineTypeElectric, CurrentSoCInPercent: 30},
		}
		overlayDrivingRange(&ranges, data)

		require.Equal(t, 400, ranges.PrimaryEngineRange.RemainingRangeInKm)
		require.Equal(t, 70, ranges.SecondaryEngineRange.CurrentSoCInPercent)
		require.Equal(t, 200, ranges.SecondaryEngineRange.RemainingRangeInKm)
	})

	t.Run("combustion only is left alone", func(t *testing.T) {
		t.Parallel()

		ranges := model.DrivingRange{
			PrimaryEngineRange: model.EngineRange{EngineType: model.EngineTypeDiesel, RemainingRangeInKm: 700},
		}
		overlayDrivingRange(&ranges, data)

		require.Equal(t, 700, ranges.PrimaryEngineRange.RemainingRangeInKm)
		require.Zero(t, ranges.PrimaryEngineRange.CurrentSoCInPercent)
	})
}

func TestDisconnectWithoutConnectIsSafe(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)
	c.Disconnect()

	_, err := c.User(context.Background())
	require.NoError(t, err)
}

func TestSubscribeUpdatesFiresPerVin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, standardResponses())
	c := newTestClient(t, api)

	var mine, other atomic.Int32
	c.SubscribeUpdates(testVin, func() { mine.Add(1) })
	c.SubscribeUpdates("WVETRA000NEVER001", func() { other.Add(1) })

	c.notify(testVin)
	require.EqualValues(t, 1, mine.Load())
	require.Zero(t, other.Load())
}
