package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// RecentOrders returns the newest valid orders as display-ready rows.
// Orders without an id or a usable creation timestamp are dropped rather
// than rendered as broken rows. Ties on the timestamp break on id so the
// listing is deterministic.
func (a *Aggregator) RecentOrders(orders []entity.Order, limit int) []dto.RecentOrder {
	if limit <= 0 {
		limit = a.cfg.RecentOrders
	}

	valid := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if o.Valid() {
			valid = append(valid, o)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if !valid[i].CreatedAt.Equal(valid[j].CreatedAt) {
			return valid[i].CreatedAt.After(valid[j].CreatedAt)
		}
		return valid[i].ID < valid[j].ID
	})
	if len(valid) > limit {
		valid = valid[:limit]
	}

	now := a.now()
	rows := make([]dto.RecentOrder, 0, len(valid))
	for _, o := range valid {
		rows = append(rows, dto.RecentOrder{
			ID:         shortOrderID(o.ID),
			Customer:   o.User.DisplayName(),
			Amount:     "$" + o.TotalPrice.StringFixed(2),
			Status:     o.DisplayStatus(),
			Time:       RelativeTime(now, o.CreatedAt),
			TotalItems: o.TotalItems(),
			OrderDate:  o.CreatedAt.Format("1/2/2006"),
		})
	}
	return rows
}

// shortOrderID renders the display id: the last 8 characters of the
// upstream id, uppercased, hash-prefixed.
func shortOrderID(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "#" + strings.ToUpper(id)
}

// RelativeTime renders a coarse "time ago" label. A zero timestamp is
// unknown; a future timestamp clamps to "Just now".
func RelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return "Unknown time"
	}

	d := now.Sub(t)
	if d < 0 {
		return "Just now"
	}

	seconds := int64(d.Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	case seconds < 2592000:
		return fmt.Sprintf("%d days ago", seconds/86400)
	case seconds < 31536000:
		return fmt.Sprintf("%d months ago", seconds/2592000)
	default:
		return fmt.Sprintf("%d years ago", seconds/31536000)
	}
}
