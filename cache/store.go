package cache

import (
	"context"

	"github.com/goliatone/go-sportdata-cache/cacheitem"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

// Requester is the entry that started a fetch chain. Stores merge into it
// too when it is not the entry they hold for the payload.
type Requester = cacheitem.Entry

// ItemType narrows deletes and lookups to one kind of item.
type ItemType int

const (
	ItemTypeAll ItemType = iota
	ItemTypeSportEvent
	ItemTypeCompetitor
	ItemTypePlayer
	ItemTypeStatus
	ItemTypeVariant
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeSportEvent:
		return "sport_event"
	case ItemTypeCompetitor:
		return "competitor"
	case ItemTypePlayer:
		return "player"
	case ItemTypeStatus:
		return "status"
	case ItemTypeVariant:
		return "variant"
	default:
		return "all"
	}
}

// Matches reports whether t selects other. ItemTypeAll selects everything.
func (t ItemType) Matches(other ItemType) bool {
	return t == ItemTypeAll || t == other
}

// Store is a cache store registered with the Manager.
type Store interface {
	// Categories are the payload categories the store wants to receive.
	Categories() []dto.Category
	// CacheAddDto merges p into the store. The bool reports whether the
	// store handled the payload.
	CacheAddDto(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) (bool, error)
	CacheDeleteItem(ctx context.Context, id urn.URN, t ItemType)
	CacheHasItem(id urn.URN, t ItemType) bool
}

// Saver is what fetchers call once a payload arrived. The Manager
// implements it.
type Saver interface {
	SaveDto(ctx context.Context, id urn.URN, p dto.Payload, l lang.Language, c dto.Category, requester Requester) error
}

// Exporter is implemented by stores that support warm restarts. ImportAll
// receives every record and ignores the kinds the store does not own.
type Exporter interface {
	ExportAll(ctx context.Context) ([]cacheitem.Exportable, error)
	ImportAll(ctx context.Context, records []cacheitem.Exportable) error
}

// StoreHealth is a store's item count broken down by entry kind. Inflight
// counts the upstream fetches currently holding a coordinator lease.
type StoreHealth struct {
	ItemCount int            `json:"item_count"`
	ByType    map[string]int `json:"by_type"`
	Inflight  int            `json:"inflight,omitempty"`
}

// HealthReporter is implemented by stores that report their size.
type HealthReporter interface {
	Health() StoreHealth
}
