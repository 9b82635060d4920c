// Package policy decides what a requester may do with a video. Visibility is
// a coarse public/private flag and ownership is the only other dimension, so
// every decision is a total function with no I/O.
package policy

import "videovoyage/internal/model"

// Scope describes which videos a listing may return.
type Scope int

const (
	// ScopePublic returns only public videos (anonymous requesters).
	ScopePublic Scope = iota
	// ScopePublicOrOwn returns public videos plus the requester's own.
	ScopePublicOrOwn
	// ScopeAll returns every video (admins).
	ScopeAll
)

// CanView reports whether the requester may read the video's detail or
// stream its bytes. Public videos are readable by anyone; private videos
// only by their owner or an admin.
func CanView(requester model.Identity, video model.Video) bool {
	if video.IsPublic {
		return true
	}

	return isOwnerOrAdmin(requester, video)
}

// CanModify reports whether the requester may update or delete the video.
// Visibility is irrelevant here: only the owner or an admin may mutate.
func CanModify(requester model.Identity, video model.Video) bool {
	return isOwnerOrAdmin(requester, video)
}

// ListScope maps the requester to the catalog slice they may list.
func ListScope(requester model.Identity) Scope {
	switch {
	case requester.IsAdmin():
		return ScopeAll
	case requester.IsAnonymous():
		return ScopePublic
	default:
		return ScopePublicOrOwn
	}
}

func isOwnerOrAdmin(requester model.Identity, video model.Video) bool {
	if requester.IsAnonymous() {
		return false
	}
	if requester.IsAdmin() {
		return true
	}

	return requester.ID == video.Uploader.ID
}
