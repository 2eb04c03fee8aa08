package storage

// Field is an Elasticsearch field mapping.
type Field struct {
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Analyzer string `json:"analyzer,omitempty"`
}

// ComplaintMapping is the index definition for complaints.
type ComplaintMapping struct {
	Settings ComplaintSettings `json:"settings"`
	Mappings ComplaintMappings `json:"mappings"`
}

// ComplaintSettings defines index-level settings.
type ComplaintSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// ComplaintMappings defines the field mappings.
type ComplaintMappings struct {
	Properties ComplaintProperties `json:"properties"`
}

// ComplaintProperties maps each stored field. Equality filters and aggregations
// run on the keyword fields.
type ComplaintProperties struct {
	Text            Field `json:"text"`
	Category        Field `json:"category"`
	Priority        Field `json:"priority"`
	Summary         Field `json:"summary"`
	SuggestedAction Field `json:"suggested_action"`
	Status          Field `json:"status"`
	CreatedAt       Field `json:"created_at"`
}

// NewComplaintMapping returns the default single-shard mapping.
func NewComplaintMapping() *ComplaintMapping {
	return &ComplaintMapping{
		Settings: ComplaintSettings{
			NumberOfShards:   1,
			NumberOfReplicas: 0,
		},
		Mappings: ComplaintMappings{
			Properties: ComplaintProperties{
				Text:            Field{Type: "text", Analyzer: "standard"},
				Category:        Field{Type: "keyword"},
				Priority:        Field{Type: "keyword"},
				Summary:         Field{Type: "text", Analyzer: "standard"},
				SuggestedAction: Field{Type: "text", Analyzer: "standard"},
				Status:          Field{Type: "keyword"},
				CreatedAt: Field{
					Type:   "date",
					Format: "strict_date_optional_time||epoch_millis",
				},
			},
		},
	}
}
