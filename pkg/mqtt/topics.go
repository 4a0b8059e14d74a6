package mqtt

// The broker publishes per-vehicle events under fixed topic families. The
// lists below mirror the backend's catalog; subscriptions are rebuilt from
// them on every (re)connect because the broker forgets subscriptions of a
// fresh session.

var operationTopics = []string{
	"air-conditioning/set-air-conditioning-at-unlock",
	"air-conditioning/set-air-conditioning-seats-heating",
	"air-conditioning/set-air-conditioning-timers",
	"air-conditioning/set-air-conditioning-without-external-power",
	"air-conditioning/set-target-temperature",
	"air-conditioning/start-stop-air-conditioning",
	"auxiliary-heating/start-stop-auxiliary-heating",
	"air-conditioning/start-stop-window-heating",
	"air-conditioning/windows-heating",
	"charging/start-stop-charging",
	"charging/update-battery-support",
	"charging/update-auto-unlock-plug",
	"charging/update-care-mode",
	"charging/update-charge-limit",
	"charging/update-charge-mode",
	"charging/update-charging-profiles",
	"charging/update-charging-current",
	"vehicle-access/honk-and-flash",
	"vehicle-access/lock-vehicle",
	"vehicle-services-backup/apply-backup",
	"vehicle-wakeup/wakeup",
}

var serviceTopics = []string{
	"air-conditioning",
	"auxiliary-heating",
	"charging",
	"departure",
	"vehicle-status/access",
	"vehicle-status/lights",
}

var vehicleTopics = []string{
	"vehicle-connection-status-update",
	"vehicle-ignition-status",
}

var accountTopics = []string{
	"privacy",
}

// topicsFor builds the full subscription list for one user and their
// vehicles. Account event topics are per account, not per vehicle.
func topicsFor(userID string, vins []string) []string {
	var topics []string
	for _, vin := range vins {
		prefix := userID + "/" + vin + "/"
		for _, topic := range operationTopics {
			topics = append(topics, prefix+"operation-request/"+topic)
		}
		for _, topic := range serviceTopics {
			topics = append(topics, prefix+"service-event/"+topic)
		}
		for _, topic := range vehicleTopics {
			topics = append(topics, prefix+"vehicle-event/"+topic)
		}
	}
	for _, topic := range accountTopics {
		topics = append(topics, userID+"/account-event/"+topic)
	}
	return topics
}
