package catalog

import "github.com/gang93/pos-backend/pkg/db/models"

// Snapshot is the slice of catalog one order needs: the menu items its cart
// references and the complete add-on catalog.
type Snapshot struct {
	menu   map[int64]models.MenuItem
	addOns map[int64]models.AddOn
	order  []models.AddOn
}

// NewSnapshot indexes the provided records. addOns must be in catalog order.
func NewSnapshot(menu []models.MenuItem, addOns []models.AddOn) *Snapshot {
	s := &Snapshot{
		menu:   make(map[int64]models.MenuItem, len(menu)),
		addOns: make(map[int64]models.AddOn, len(addOns)),
		order:  addOns,
	}
	for _, item := range menu {
		s.menu[item.MenuItemID] = item
	}
	for _, addOn := range addOns {
		s.addOns[addOn.AddOnID] = addOn
	}
	return s
}

func (s *Snapshot) MenuItem(id int64) (models.MenuItem, bool) {
	item, ok := s.menu[id]
	return item, ok
}

func (s *Snapshot) AddOn(id int64) (models.AddOn, bool) {
	addOn, ok := s.addOns[id]
	return addOn, ok
}

// AddOns returns the add-on catalog in id order.
func (s *Snapshot) AddOns() []models.AddOn {
	return s.order
}
