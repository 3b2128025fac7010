package socket

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Notification Broadcasting
// ============================================

// SendNotification sends a notification to a specific member
func (b *Broadcaster) SendNotification(memberID string, notification map[string]interface{}) {
	b.hub.SendToMember(memberID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a member
func (b *Broadcaster) SendNotificationCount(memberID string, unread int) {
	b.hub.SendToMember(memberID, MessageNotificationCount, map[string]interface{}{
		"unread": unread,
	})
}

// ============================================
// Org Chart Broadcasting
// ============================================

// BroadcastSupervisorChanged tells chart watchers a reporting line moved.
// The payload carries the new edge so clients can patch without a refetch.
func (b *Broadcaster) BroadcastSupervisorChanged(memberID string, supervisorID *string, excludeMemberID string) {
	payload := map[string]interface{}{
		"memberId": memberID,
	}
	if supervisorID != nil {
		payload["supervisorId"] = *supervisorID
	}
	b.hub.SendToRoom(RoomOrgChart, MessageSupervisorChanged, payload, excludeMemberID)
}

// BroadcastOrgChartUpdated signals that the roster changed enough that
// clients should refetch the chart (batch reassignments, status sweeps).
func (b *Broadcaster) BroadcastOrgChartUpdated(changedCount int, excludeMemberID string) {
	b.hub.SendToRoom(RoomOrgChart, MessageOrgChartUpdated, map[string]interface{}{
		"changedCount": changedCount,
	}, excludeMemberID)
}

// BroadcastMemberStatusChanged announces activation/deactivation to chart watchers
func (b *Broadcaster) BroadcastMemberStatusChanged(memberID, status string) {
	msgType := MessageMemberActivated
	if status != "active" {
		msgType = MessageMemberDeactivated
	}
	b.hub.SendToRoom(RoomOrgChart, msgType, map[string]interface{}{
		"memberId": memberID,
		"status":   status,
	}, "")
}

// ============================================
// Review Broadcasting
// ============================================

// BroadcastCycleOpened announces a newly opened review cycle to everyone
func (b *Broadcaster) BroadcastCycleOpened(cycle map[string]interface{}) {
	b.hub.SendToRoom(RoomOrgChart, MessageCycleOpened, cycle, "")
}

// BroadcastCycleClosed announces a closed review cycle to everyone
func (b *Broadcaster) BroadcastCycleClosed(cycle map[string]interface{}) {
	b.hub.SendToRoom(RoomOrgChart, MessageCycleClosed, cycle, "")
}

// NotifyAssessmentSubmitted tells a supervisor a subordinate submitted
func (b *Broadcaster) NotifyAssessmentSubmitted(supervisorID string, assessment map[string]interface{}) {
	b.hub.SendToMember(supervisorID, MessageAssessmentSubmitted, assessment)
}

// NotifyFeedbackReceived tells a member they received feedback
func (b *Broadcaster) NotifyFeedbackReceived(subjectID string, feedback map[string]interface{}) {
	b.hub.SendToMember(subjectID, MessageFeedbackReceived, feedback)
}
