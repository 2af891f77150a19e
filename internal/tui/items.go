package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/google/uuid"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// feedItem is one row of the feeds panel. The zero feed with all set is the
// "All Feeds" entry.
type feedItem struct {
	all        bool
	status     models.FeedStatus
	processing bool
	selected   bool
}

func (i feedItem) Title() string {
	if i.all {
		if i.selected {
			return "● All Feeds"
		}
		return "All Feeds"
	}
	if i.selected {
		return "● " + i.status.Name
	}
	return i.status.Name
}

func (i feedItem) Description() string {
	switch {
	case i.all:
		return "Your followed feeds"
	case i.processing:
		return "Processing..."
	case i.status.Followed:
		return "Following • f to unfollow"
	default:
		return "Available • f to follow"
	}
}

func (i feedItem) FilterValue() string {
	if i.all {
		return "All Feeds"
	}
	return i.status.Name
}

var _ list.Item = feedItem{}

// feedItems lists followed feeds before available ones, behind the
// "All Feeds" entry. selected is nil when no feed is selected.
func feedItems(statuses []models.FeedStatus, pending map[uuid.UUID]bool, selected *uuid.UUID) []list.Item {
	items := make([]list.Item, 0, len(statuses)+1)
	items = append(items, feedItem{all: true, selected: selected == nil})
	for _, followed := range []bool{true, false} {
		for _, s := range statuses {
			if s.Followed != followed {
				continue
			}
			items = append(items, feedItem{
				status:     s,
				processing: pending[s.ID],
				selected:   selected != nil && *selected == s.ID,
			})
		}
	}
	return items
}
