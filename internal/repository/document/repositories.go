package document

import (
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
)

// Repositories bundles every repository built on one store.
type Repositories struct {
	Profiles        *ProfileRepository
	LeaveTypes      *LeaveTypeRepository
	LeaveRequests   *LeaveRequestRepository
	LeaveBalances   *LeaveBalanceRepository
	Policies        *PolicyRepository
	Acknowledgments *AcknowledgmentRepository
	Meetings        *MeetingRepository
	Notifications   *NotificationRepository
	Activities      *ActivityRepository
}

func NewRepositories(store docstore.Store) Repositories {
	return Repositories{
		Profiles:        NewProfileRepository(store),
		LeaveTypes:      NewLeaveTypeRepository(store),
		LeaveRequests:   NewLeaveRequestRepository(store),
		LeaveBalances:   NewLeaveBalanceRepository(store),
		Policies:        NewPolicyRepository(store),
		Acknowledgments: NewAcknowledgmentRepository(store),
		Meetings:        NewMeetingRepository(store),
		Notifications:   NewNotificationRepository(store),
		Activities:      NewActivityRepository(store),
	}
}
