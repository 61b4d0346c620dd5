package types

import (
	"encoding/json"
	"fmt"

	"github.com/gang93/pos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order payload versions stored in orders.payload_version.
const (
	// OrderPayloadLegacy is a bare JSON array of cart lines with no tip.
	OrderPayloadLegacy = 1
	// OrderPayloadCurrent is {"items": [...], "tip": "1.50"}.
	OrderPayloadCurrent = 2
)

// CartLine is one menu item with quantity and customizations.
type CartLine struct {
	MenuItemID int64           `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	AddOnIDs   []int64         `json:"addOnIDs"`
	Ice        enums.IceLevel  `json:"ice"`
	Sweetness  enums.Sweetness `json:"sweetness"`
}

// OrderPayload is the decoded form of orders.payload.
type OrderPayload struct {
	Items []CartLine      `json:"items"`
	Tip   decimal.Decimal `json:"tip"`
}

// EncodeOrderPayload always writes the current version.
func EncodeOrderPayload(p OrderPayload) (json.RawMessage, int, error) {
	if p.Items == nil {
		p.Items = []CartLine{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, 0, fmt.Errorf("encode order payload: %w", err)
	}
	return raw, OrderPayloadCurrent, nil
}

// DecodeOrderPayload decodes raw according to the stored version discriminator.
func DecodeOrderPayload(version int, raw json.RawMessage) (OrderPayload, error) {
	switch version {
	case OrderPayloadLegacy:
		var lines []CartLine
		if err := json.Unmarshal(raw, &lines); err != nil {
			return OrderPayload{}, fmt.Errorf("decode legacy order payload: %w", err)
		}
		return OrderPayload{Items: lines, Tip: decimal.Zero}, nil
	case OrderPayloadCurrent:
		var p OrderPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return OrderPayload{}, fmt.Errorf("decode order payload: %w", err)
		}
		return p, nil
	default:
		return OrderPayload{}, fmt.Errorf("unknown order payload version %d", version)
	}
}
