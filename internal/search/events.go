package search

import "github.com/spiffcs/usersearch/internal/model"

// event is anything processed by the controller loop.
type event interface {
	isEvent()
}

type termChanged struct {
	term string
}

type settleFired struct {
	gen uint64
}

type loadMore struct{}

type userResult struct {
	gen     uint64
	term    string
	profile *model.UserProfile
	err     error
}

type reposResult struct {
	gen     uint64
	term    string
	page    int
	repos   []model.Repository
	err     error
	initial bool // first page of a search sequence
}

type snapshotRequest struct {
	reply chan State
}

func (termChanged) isEvent()     {}
func (settleFired) isEvent()     {}
func (loadMore) isEvent()        {}
func (userResult) isEvent()      {}
func (reposResult) isEvent()     {}
func (snapshotRequest) isEvent() {}
