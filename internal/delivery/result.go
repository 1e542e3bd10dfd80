package delivery

// Status values for terminal job notifications.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result types echoed in the data payload.
const (
	TypeArchive = "archive"
	TypeLink    = "link"
)

// Result is the single terminal notification delivered per submitted job,
// after success or exhausted retries.
type Result struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ArchiveData is the payload shape for archive discovery jobs.
type ArchiveData struct {
	Type  string   `json:"type"`
	UUID  string   `json:"uuid"`
	URL   string   `json:"url"`
	Links []string `json:"links"`
}

// ProductData is the payload shape for full product extraction jobs. Product
// holds the extracted record on success and an empty list on failure, echoing
// the collector's expected failure shape.
type ProductData struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	URL     string `json:"url"`
	Product any    `json:"product"`
}

// FastSyncData is the payload shape for targeted re-sync jobs, echoing the
// request's combination id and target labels.
type FastSyncData struct {
	Type                   string   `json:"type"`
	UUID                   string   `json:"uuid"`
	URL                    string   `json:"url"`
	VariationCombinationID string   `json:"variation_combination_id"`
	TargetLinkTitles       []string `json:"target_link_titles"`
	Product                any      `json:"product"`
}
