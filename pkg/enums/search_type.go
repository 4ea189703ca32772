package enums

// SearchType tags a search log entry with the query path that produced it.
type SearchType string

const (
	SearchTypeKeyword  SearchType = "KEYWORD"
	SearchTypeName     SearchType = "NAME"
	SearchTypePhone    SearchType = "PHONE"
	SearchTypeLocation SearchType = "LOCATION"
)

func (t SearchType) IsValid() bool {
	switch t {
	case SearchTypeKeyword, SearchTypeName, SearchTypePhone, SearchTypeLocation:
		return true
	}
	return false
}

func (t SearchType) String() string {
	return string(t)
}
