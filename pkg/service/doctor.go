package service

import (
	"context"
	"fmt"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/store"
)

// IssueKind classifies a problem found by Diagnose.
type IssueKind string

const (
	IssueUnreadable IssueKind = "unreadable" // A folder listing failed
	IssueSettings   IssueKind = "settings"   // Display settings could not be read
	IssueShortcut   IssueKind = "shortcut"   // A shortcut does not lead to a folder
	IssueCycle      IssueKind = "cycle"      // A shortcut points at one of its own ancestors
)

// Issue is a single problem found in the store.
type Issue struct {
	ID      string    `json:"id"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// Report summarizes a walk over the store.
type Report struct {
	Folders   int     `json:"folders"`
	Documents int     `json:"documents"`
	Truncated bool    `json:"truncated,omitempty"`
	Issues    []Issue `json:"issues"`
}

// Diagnose walks the store breadth-first from the configured root, visiting
// at most limit folders, and reports problems that would show up while
// navigating. Shortcuts are checked but not followed.
func (s *Service) Diagnose(ctx context.Context, limit int) (*Report, error) {
	rootID := s.Config.RootID
	if _, err := s.Store.FetchNode(ctx, rootID); err != nil {
		return nil, fmt.Errorf("fetch root %s: %w", rootID, err)
	}

	report := &Report{Issues: []Issue{}}
	parentOf := map[string]string{}
	visited := models.NewIDSet(rootID)
	queue := []string{rootID}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && report.Folders >= limit {
			report.Truncated = true
			break
		}
		id := queue[0]
		queue = queue[1:]
		report.Folders++

		children, err := s.Store.FetchChildren(ctx, id)
		if err != nil {
			report.add(id, IssueUnreadable, err.Error())
			continue
		}

		for _, child := range children {
			switch {
			case child.Kind == models.KindFolder:
				if _, err := models.DecodeDisplaySettings(child.Description); err != nil {
					report.add(child.ID, IssueSettings, err.Error())
				}
				if visited.Has(child.ID) {
					continue
				}
				visited.Add(child.ID)
				parentOf[child.ID] = id
				queue = append(queue, child.ID)

			case child.Kind == models.KindFolderShortcut:
				s.checkShortcut(ctx, report, child, id, parentOf)

			default:
				report.Documents++
			}
		}
	}

	s.Logger.WithField("folders", report.Folders).WithField("issues", len(report.Issues)).Debug("Diagnose finished")
	return report, nil
}

func (s *Service) checkShortcut(ctx context.Context, report *Report, shortcut *models.Node, parent string, parentOf map[string]string) {
	if !shortcut.ActsAsFolder() {
		report.add(shortcut.ID, IssueShortcut, "target is not a folder")
		return
	}
	target := shortcut.ShortcutTarget
	if target == "" {
		return
	}
	if _, err := s.Store.FetchNode(ctx, target); err != nil {
		if store.IsTerminal(err) {
			report.add(shortcut.ID, IssueShortcut, fmt.Sprintf("target %s: %v", target, err))
		}
		return
	}

	for ancestor := parent; ancestor != ""; ancestor = parentOf[ancestor] {
		if ancestor == target {
			report.add(shortcut.ID, IssueCycle, fmt.Sprintf("points at its ancestor %s", target))
			return
		}
	}
}

func (r *Report) add(id string, kind IssueKind, message string) {
	r.Issues = append(r.Issues, Issue{ID: id, Kind: kind, Message: message})
}
