package policy

import "github.com/Adilet09/academy-league/models"

// Action - действие над матчем, для которого запрашивается решение.
type Action string

const (
	ActionRead          Action = "read"
	ActionRecordPoint   Action = "record_point"
	ActionAssignReferee Action = "assign_referee"
	ActionEditResult    Action = "edit_result"
	ActionCreateMatch   Action = "create_match"
)

// CanMutate - чистая функция решения "кто что может делать с матчем".
// Все проверки ролей для мутаций матча проходят через неё, разрозненных
// проверок по строкам ролей в сервисах быть не должно.
//
// Терминальность завершённого матча здесь НЕ проверяется: она абсолютна
// и не зависит от роли, поэтому её проверяет сам сервис до применения
// перехода.
func CanMutate(actor models.Actor, match *models.Match, action Action) bool {
	switch actor.Role {
	case models.RoleOwner, models.RoleAdmin:
		return true
	case models.RoleReferee:
		switch action {
		case ActionRead:
			return true
		case ActionRecordPoint:
			// Судья ведёт счёт только в назначенном ему матче.
			return match != nil && match.RefereeID != nil && *match.RefereeID == actor.ID
		}
		return false
	case models.RolePlayer:
		return action == ActionRead
	}
	return false
}
