package policy

import (
	"testing"

	"github.com/Adilet09/academy-league/models"
	"github.com/stretchr/testify/assert"
)

func matchWithReferee(refereeID int) *models.Match {
	return &models.Match{
		ID:        10,
		RefereeID: &refereeID,
		Status:    models.MatchStatusInProgress,
	}
}

func TestCanMutateDecisionTable(t *testing.T) {
	assignedReferee := models.Actor{ID: 42, Role: models.RoleReferee}
	otherReferee := models.Actor{ID: 99, Role: models.RoleReferee}
	owner := models.Actor{ID: 1, Role: models.RoleOwner}
	admin := models.Actor{ID: 2, Role: models.RoleAdmin}
	player := models.Actor{ID: 3, Role: models.RolePlayer}

	match := matchWithReferee(assignedReferee.ID)

	tests := []struct {
		name   string
		actor  models.Actor
		match  *models.Match
		action Action
		want   bool
	}{
		{"owner assigns referee", owner, match, ActionAssignReferee, true},
		{"owner records point", owner, match, ActionRecordPoint, true},
		{"owner edits result", owner, match, ActionEditResult, true},
		{"owner creates match", owner, nil, ActionCreateMatch, true},
		{"owner reads", owner, match, ActionRead, true},

		{"admin assigns referee", admin, match, ActionAssignReferee, true},
		{"admin records point", admin, match, ActionRecordPoint, true},
		{"admin edits result", admin, match, ActionEditResult, true},
		{"admin creates match", admin, nil, ActionCreateMatch, true},
		{"admin reads", admin, match, ActionRead, true},

		{"assigned referee records point", assignedReferee, match, ActionRecordPoint, true},
		{"assigned referee reads", assignedReferee, match, ActionRead, true},
		{"assigned referee cannot assign referee", assignedReferee, match, ActionAssignReferee, false},
		{"assigned referee cannot edit result", assignedReferee, match, ActionEditResult, false},
		{"assigned referee cannot create match", assignedReferee, nil, ActionCreateMatch, false},

		{"other referee cannot record point", otherReferee, match, ActionRecordPoint, false},
		{"referee cannot score match without referee", assignedReferee, &models.Match{ID: 11}, ActionRecordPoint, false},
		{"referee cannot score nil match", assignedReferee, nil, ActionRecordPoint, false},

		{"player reads", player, match, ActionRead, true},
		{"player cannot record point", player, match, ActionRecordPoint, false},
		{"player cannot assign referee", player, match, ActionAssignReferee, false},
		{"player cannot edit result", player, match, ActionEditResult, false},

		{"unknown role denied everything", models.Actor{ID: 5, Role: "coach"}, match, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.actor, tt.match, tt.action))
		})
	}
}
