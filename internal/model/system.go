package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string          `json:"app_version"`
	DbVersion  string          `json:"db_version"`
	Features   map[string]bool `json:"features"`
}

// PlatformSettings is the administrative view of the platform-wide
// settings owned by the system service.
type PlatformSettings struct {
	FeeBps        int64  `json:"feeBps"`
	FeeRecipient  string `json:"feeRecipient"`
	EmergencyStop bool   `json:"emergencyStop"`
}
