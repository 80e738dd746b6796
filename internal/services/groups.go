package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fardaevm/diversify/internal/models"
)

// ErrTargetNotGrouped is returned when the query target does not
// appear in the supplied partition snapshot.
var ErrTargetNotGrouped = errors.New("target ticker absent from group assignments")

// GroupRanking pairs a group id with its members ranked against the
// query target.
type GroupRanking struct {
	GroupID   string
	Entries   []models.RankedEntry
	HasTarget bool
}

// GroupService reconciles externally computed partition snapshots with
// the ranking engine. Snapshots are transient: rebuilt per call, never
// persisted or mutated.
type GroupService struct {
	ranking *RankingService
}

func NewGroupService(ranking *RankingService) *GroupService {
	return &GroupService{ranking: ranking}
}

// CollectGroups buckets (group id, ticker) pairs into groups. The
// group containing the target comes first and carries the target
// reference; the rest follow in group-id encounter order. A target
// absent from the assignments is an error, not an empty group.
func (s *GroupService) CollectGroups(target string, assignments []models.GroupAssignment) ([]models.Group, error) {
	target = strings.ToUpper(target)

	members := make(map[string][]string)
	var order []string
	targetGroup := ""
	found := false

	for _, a := range assignments {
		ticker := strings.ToUpper(a.Ticker)
		if _, ok := members[a.GroupID]; !ok {
			order = append(order, a.GroupID)
		}
		members[a.GroupID] = append(members[a.GroupID], ticker)
		if ticker == target {
			targetGroup = a.GroupID
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotGrouped, target)
	}

	groups := make([]models.Group, 0, len(order))
	groups = append(groups, models.Group{
		ID:      targetGroup,
		Members: members[targetGroup],
		Target:  target,
	})
	for _, id := range order {
		if id == targetGroup {
			continue
		}
		groups = append(groups, models.Group{ID: id, Members: members[id]})
	}

	return groups, nil
}

// RankGroups ranks every group's members against the target, at most n
// entries per group. The target is never ranked against itself, so in
// its own group it is excluded from the candidates.
func (s *GroupService) RankGroups(target string, groups []models.Group, n int) ([]GroupRanking, error) {
	out := make([]GroupRanking, 0, len(groups))
	for _, g := range groups {
		entries, err := s.ranking.Rank(target, g.Members, n)
		if err != nil {
			return nil, fmt.Errorf("rank group %s: %w", g.ID, err)
		}
		out = append(out, GroupRanking{
			GroupID:   g.ID,
			Entries:   entries,
			HasTarget: g.Target != "",
		})
	}
	return out, nil
}
