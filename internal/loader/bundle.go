package loader

import (
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/repository"
)

// Bundle is the per-request loader set. A fresh Bundle is constructed
// for every incoming request and discarded at its end; sharing one
// across requests would leak data between viewers.
type Bundle struct {
	Users           *Loader[int64, model.User]
	Sports          *Loader[int64, model.Sport]
	Prefectures     *Loader[int64, model.Prefecture]
	RecruitmentTags *Loader[int64, []model.Tag]
	StockCounts     *Loader[int64, int64]

	// ViewerStocked keys are [viewer_id, recruitment_id];
	// Following keys are [follower_id, followed_id]. Both are
	// directional: swapping the tuple is a different association.
	ViewerStocked *Loader[[2]int64, struct{}]
	Following     *Loader[[2]int64, struct{}]
}

// Repos collects the repositories the loaders fetch through.
type Repos struct {
	Users       repository.UserRepository
	Sports      repository.SportRepository
	Prefectures repository.PrefectureRepository
	Tags        repository.TagRepository
	Stocks      repository.StockRepository
	Follows     repository.FollowRepository
}

// NewBundle builds the loader set for one request.
func NewBundle(r Repos, opts ...Option) *Bundle {
	return &Bundle{
		Users:           New(r.Users.GetByIDs, opts...),
		Sports:          New(r.Sports.GetByIDs, opts...),
		Prefectures:     New(r.Prefectures.GetByIDs, opts...),
		RecruitmentTags: New(r.Tags.ByRecruitmentIDs, opts...),
		StockCounts:     New(r.Stocks.CountByRecruitmentIDs, opts...),
		ViewerStocked:   New(r.Stocks.ExistingPairs, opts...),
		Following:       New(r.Follows.ExistingPairs, opts...),
	}
}
