package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vetraconnect/vetra/pkg/model"
)

func TestStartAirConditioning(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v2/air-conditioning/" + testVin + "/start": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.StartAirConditioning(context.Background(), testVin, 21.3))

	last := f.last(t)
	require.Equal(t, http.MethodPost, last.method)
	require.JSONEq(t, `{
		"heaterSource": "ELECTRIC",
		"targetTemperature": {"temperatureValue": 21.5, "unitInCar": "CELSIUS"}
	}`, string(last.body))
}

func TestSetTargetTemperature(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v2/air-conditioning/" + testVin + "/settings/target-temperature": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetTargetTemperature(context.Background(), testVin, 23.2))
	require.JSONEq(t, `{"temperatureValue": 23, "unitInCar": "CELSIUS"}`, string(f.last(t).body))
}

func TestSetChargeLimit(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"PUT /api/v1/charging/" + testVin + "/set-charge-limit": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetChargeLimit(context.Background(), testVin, 80))

	last := f.last(t)
	require.Equal(t, http.MethodPut, last.method)
	require.JSONEq(t, `{"targetSOCInPercent": 80}`, string(last.body))
}

func TestSetBatteryCareMode(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"PUT /api/v1/charging/" + testVin + "/set-care-mode": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetBatteryCareMode(context.Background(), testVin, false))
	require.JSONEq(t, `{"chargingCareMode": "DEACTIVATED"}`, string(f.last(t).body))

	require.NoError(t, c.SetBatteryCareMode(context.Background(), testVin, true))
	require.JSONEq(t, `{"chargingCareMode": "ACTIVATED"}`, string(f.last(t).body))
}

func TestSetReducedCurrentLimit(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"PUT /api/v1/charging/" + testVin + "/set-charging-current": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetReducedCurrentLimit(context.Background(), testVin, true))
	require.JSONEq(t, `{"chargingCurrent": "REDUCED"}`, string(f.last(t).body))
}

func TestSetChargeMode(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v1/charging/" + testVin + "/set-charge-mode": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetChargeMode(context.Background(), testVin, model.ChargeModeManual))
	require.JSONEq(t, `{"chargeMode": "MANUAL"}`, string(f.last(t).body))
}

func TestWakeup(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v1/vehicle-wakeup/" + testVin + "?applyRequestLimiter=true": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.Wakeup(context.Background(), testVin))
	require.Equal(t, "/api/v1/vehicle-wakeup/"+testVin+"?applyRequestLimiter=true", f.last(t).uri)
}

func TestHonkFlash(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET /api/v1/maps/positions?vin=" + testVin: `{
			"positions": [
				{"type": "VEHICLE", "gpsCoordinates": {"latitude": 53.47, "longitude": 9.92}}
			]
		}`,
		"POST /api/v1/vehicle-access/" + testVin + "/honk-and-flash": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.HonkFlash(context.Background(), testVin, true))

	recorded := f.recorded()
	require.Len(t, recorded, 2)
	require.Equal(t, http.MethodGet, recorded[0].method)
	require.JSONEq(t, `{
		"mode": "HONK_AND_FLASH",
		"vehiclePosition": {"lat": 53.47, "lng": 9.92}
	}`, string(recorded[1].body))
}

func TestHonkFlashWithoutPosition(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"GET /api/v1/maps/positions?vin=" + testVin: `{"positions": []}`,
	})
	c := newTestClient(t, f)

	err := c.HonkFlash(context.Background(), testVin, false)
	require.ErrorContains(t, err, "no known position")
	require.Len(t, f.recorded(), 1)
}

func TestLockAndUnlock(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v1/vehicle-access/" + testVin + "/lock":   "",
		"POST /api/v1/vehicle-access/" + testVin + "/unlock": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.Lock(context.Background(), testVin, "1234"))
	require.JSONEq(t, `{"currentSpin": "1234"}`, string(f.last(t).body))

	require.NoError(t, c.Unlock(context.Background(), testVin, "1234"))
	require.Equal(t, "/api/v1/vehicle-access/"+testVin+"/unlock", f.last(t).uri)
}

func TestStartAuxiliaryHeating(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v2/air-conditioning/" + testVin + "/auxiliary-heating/start": "",
	})
	c := newTestClient(t, f)

	temperature := model.NewTargetTemperature(20.0)
	require.NoError(t, c.StartAuxiliaryHeating(context.Background(), testVin, "1234", &model.AuxiliaryConfig{
		TargetTemperature: &temperature,
		StartMode:         model.AuxiliaryStartHeating,
	}))

	require.JSONEq(t, `{
		"spin": "1234",
		"configuration": {
			"targetTemperature": {"temperatureValue": 20, "unitInCar": "CELSIUS"},
			"startMode": "HEATING"
		}
	}`, string(f.last(t).body))
}

func TestStartAuxiliaryHeatingWithoutConfig(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v2/air-conditioning/" + testVin + "/auxiliary-heating/start": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.StartAuxiliaryHeating(context.Background(), testVin, "1234", nil))
	require.JSONEq(t, `{"spin": "1234"}`, string(f.last(t).body))
}

func TestSetACAtUnlock(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v2/air-conditioning/" + testVin + "/settings/ac-at-unlock": "",
	})
	c := newTestClient(t, f)

	require.NoError(t, c.SetACAtUnlock(context.Background(), testVin, true))
	require.JSONEq(t, `{"airConditioningAtUnlockEnabled": true}`, string(f.last(t).body))
}

func TestVerifySpin(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t, map[string]string{
		"POST /api/v1/spin/verify": `{
			"verificationStatus": "INCORRECT_SPIN",
			"spinStatus": {"state": "DEFINED", "remainingTries": 2}
		}`,
	})
	c := newTestClient(t, f)

	report, err := c.VerifySpin(context.Background(), "0000")
	require.NoError(t, err)
	require.Equal(t, model.SpinIncorrect, report.VerificationStatus)
	require.NotNil(t, report.SpinStatus)
	require.Equal(t, 2, report.SpinStatus.RemainingTries)
	require.JSONEq(t, `{"currentSpin": "0000"}`, string(f.last(t).body))
}
