package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vetraconnect/vetra/pkg/anonymize"
	"github.com/vetraconnect/vetra/pkg/rest"
)

func TestPrintResultJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a := &app{out: &out, format: formatJSON}
	require.NoError(t, a.printResult("info", map[string]any{"vin": testVin, "name": "Elaro"}))

	require.Contains(t, out.String(), fmt.Sprintf(`"vin": %q`, testVin))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, "Elaro", decoded["name"])
}

func TestPrintResultYAMLByDefault(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a := &app{out: &out, format: formatYAML}
	require.NoError(t, a.printResult("charging", map[string]any{
		"vin":     testVin,
		"battery": map[string]any{"stateOfChargeInPercent": 40},
	}))

	require.Contains(t, out.String(), "vin: "+testVin+"\n")
	require.Contains(t, out.String(), "stateOfChargeInPercent: 40\n")
}

func TestPrintResultAnonymizes(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a := &app{out: &out, format: formatJSON, anonymize: true}
	require.NoError(t, a.printResult("user", map[string]any{
		"id":        "real-id",
		"email":     "lisa@example.org",
		"firstName": "Lisa",
	}))

	require.Contains(t, out.String(), anonymize.Email)
	require.Contains(t, out.String(), anonymize.FirstName)
	require.NotContains(t, out.String(), "lisa@example.org")
}

func TestPrintResultAnonymizePassesThroughUnscrubbedEndpoints(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a := &app{out: &out, format: formatJSON, anonymize: true}
	require.NoError(t, a.printResult("charging", map[string]any{"chargingRateInKmh": 35.5}))
	require.Contains(t, out.String(), `"chargingRateInKmh": 35.5`)
}

func TestKeyPattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		line   string
		prefix string
		key    string
	}{
		{line: "vin: " + testVin, prefix: "", key: "vin"},
		{line: "  carCapturedTimestamp: 2024-05-01", prefix: "  ", key: "carCapturedTimestamp"},
		{line: "- id: 1", prefix: "- ", key: "id"},
		{line: "    - name: after-charge", prefix: "    - ", key: "name"},
		{line: `  "vin": "` + testVin + `",`, prefix: "  ", key: `"vin"`},
		{line: "status:", prefix: "", key: "status"},
	} {
		m := keyPattern.FindStringSubmatch(tc.line)
		require.NotNil(t, m, "expected a key in %q", tc.line)
		require.Equal(t, tc.prefix, m[1])
		require.Equal(t, tc.key, m[2])
	}

	for _, line := range []string{
		"- " + testVin,
		"  40",
		"https://example.com/path",
		"plain text",
	} {
		require.Nil(t, keyPattern.FindStringSubmatch(line), "no key expected in %q", line)
	}
}

func TestColorizeKeepsContentIntact(t *testing.T) {
	t.Parallel()

	// Without a terminal the styles render to plain text, so highlighting
	// must not change a single byte.
	sample := strings.Join([]string{
		"vin: " + testVin,
		"status:",
		"  battery:",
		"    stateOfChargeInPercent: 40",
		"errors:",
		"- type: STATUS",
		"  url: https://example.com",
		"",
	}, "\n")
	require.Equal(t, sample, colorize(sample))
}

func TestPrintErrorExpandsStatusError(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	a := &app{errOut: &errOut}
	a.printError(fmt.Errorf("info: %w", &rest.StatusError{
		StatusCode: 404,
		URL:        "https://api.connect.vetra.eu/v1/vehicle-health-report/warning-lights/" + testVin,
		Body:       []byte(`{"message":"vehicle not found"}` + "\n"),
	}))

	out := errOut.String()
	require.Contains(t, out, "request failed")
	require.Contains(t, out, "status: 404")
	require.Contains(t, out, "https://api.connect.vetra.eu/v1/vehicle-health-report/warning-lights/"+testVin)
	require.Contains(t, out, `{"message":"vehicle not found"}`)
}

func TestPrintErrorSkipsEmptyBody(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	a := &app{errOut: &errOut}
	a.printError(&rest.StatusError{StatusCode: 503, URL: "https://api.connect.vetra.eu/v1/users"})

	require.Contains(t, errOut.String(), "status: 503")
	require.NotContains(t, errOut.String(), "body:")
}

func TestPrintErrorPlain(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	a := &app{errOut: &errOut}
	a.printError(fmt.Errorf("login: connection refused"))
	require.Contains(t, errOut.String(), "✗ login: connection refused")
}

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("VETRA_TEST_TIMEOUT", "")
	require.Equal(t, 5*time.Minute, getEnvDurationOrDefault("VETRA_TEST_TIMEOUT", 5*time.Minute))

	t.Setenv("VETRA_TEST_TIMEOUT", "90s")
	require.Equal(t, 90*time.Second, getEnvDurationOrDefault("VETRA_TEST_TIMEOUT", 5*time.Minute))

	t.Setenv("VETRA_TEST_TIMEOUT", "soon")
	require.Equal(t, 5*time.Minute, getEnvDurationOrDefault("VETRA_TEST_TIMEOUT", 5*time.Minute))
}
