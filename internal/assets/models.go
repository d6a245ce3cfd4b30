package assets

type Asset struct {
	Address  string `json:"address"` // checksummed
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Store struct {
	// network -> address -> asset
	Networks map[string]map[string]Asset `json:"networks"`
	Schema   int                         `json:"schema"`
}
