package models

// All lists every persisted model, in dependency order, for schema bootstrapping.
func All() []any {
	return []any{
		&MenuItem{},
		&AddOn{},
		&InventoryItem{},
		&CustomerReward{},
		&Order{},
		&Sale{},
	}
}
