package presence

import "fmt"

const (
	KindPlan = "plan"
	KindUser = "user"
)

// RoomKey namespaces a broadcast channel, e.g. "plan:7" or "user:9".
func RoomKey(kind string, id any) string {
	return fmt.Sprintf("%s:%v", kind, id)
}

func PlanRoom(planID uint) string { return RoomKey(KindPlan, planID) }

func UserRoom(userID uint) string { return RoomKey(KindUser, userID) }
