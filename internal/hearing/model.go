package hearing

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "hearing not found")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidInput        = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrInvalidTimeRange    = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidStatus       = apperror.New(http.StatusBadRequest, "invalid hearing status")
	ErrInvalidHearingType  = apperror.New(http.StatusBadRequest, "invalid hearing type")
	ErrInvalidHearingDate  = apperror.New(http.StatusBadRequest, "invalid hearing date")
	ErrInvalidHearingTime  = apperror.New(http.StatusBadRequest, "hearing time must be HH:MM")
	ErrCourtNameRequired   = apperror.New(http.StatusBadRequest, "court name is required")
	ErrCaseNotFound        = apperror.New(http.StatusNotFound, "case not found")
	ErrOverrideReason      = apperror.New(http.StatusBadRequest, "a reason is required to override conflicts")
	ErrSchedulingBusy      = apperror.New(http.StatusServiceUnavailable, "another change to this schedule is in progress, try again")
	ErrTimeRequiredForScan = apperror.New(http.StatusBadRequest, "start time or hearing date is required")
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusAdjourned Status = "adjourned"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusAdjourned, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether hearings in this status take part in conflict detection.
func (s Status) Active() bool {
	return s == StatusScheduled || s == StatusAdjourned
}

// ActiveStatuses lists the statuses compared by the conflict scanner.
var ActiveStatuses = []string{string(StatusScheduled), string(StatusAdjourned)}

type Type string

const (
	TypeFirst    Type = "first_hearing"
	TypeInterim  Type = "interim_hearing"
	TypeFinal    Type = "final_hearing"
	TypeEvidence Type = "evidence_hearing"
	TypeArgument Type = "argument_hearing"
	TypeJudgment Type = "judgment_hearing"
	TypeOther    Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFirst, TypeInterim, TypeFinal, TypeEvidence, TypeArgument, TypeJudgment, TypeOther:
		return true
	}
	return false
}

// ResourceScope identifies the resources a hearing occupies. Empty fields are unknown.
type ResourceScope struct {
	CourtroomID string `bson:"courtroomId"`
	CounselID   string `bson:"counselId"`
	ClientID    string `bson:"clientId"`
}

// ConflictOverride records who accepted a schedule clash and why.
// It is an audit trail only; scans do not read it.
type ConflictOverride struct {
	Allowed             bool       `bson:"allowed"`
	Reason              string     `bson:"reason"`
	OverriddenBy        string     `bson:"overriddenBy"`
	OverriddenAt        *time.Time `bson:"overriddenAt,omitempty"`
	ConflictingHearings []string   `bson:"conflictingHearings"`
}

type Attendance struct {
	ClientPresent        bool     `bson:"clientPresent" json:"client_present"`
	OpposingPartyPresent bool     `bson:"opposingPartyPresent" json:"opposing_party_present"`
	WitnessesPresent     []string `bson:"witnessesPresent" json:"witnesses_present"`
}

type Order struct {
	OrderType    string    `bson:"orderType" json:"order_type"`
	OrderDetails string    `bson:"orderDetails" json:"order_details"`
	OrderDate    time.Time `bson:"orderDate" json:"order_date"`
}

type Hearing struct {
	ID     string `bson:"_id"`
	Owner  string `bson:"owner"`
	CaseID string `bson:"caseId"`

	// Legacy date and wall-clock time, interpreted in Timezone.
	HearingDate *time.Time `bson:"hearingDate,omitempty"`
	HearingTime string     `bson:"hearingTime"`

	Timezone string     `bson:"timezone"`
	StartAt  *time.Time `bson:"startAt,omitempty"`
	EndAt    *time.Time `bson:"endAt,omitempty"`
	Duration int        `bson:"duration"`

	Status           Status           `bson:"status"`
	ResourceScope    ResourceScope    `bson:"resourceScope"`
	ConflictOverride ConflictOverride `bson:"conflictOverride"`

	CourtName         string     `bson:"courtName"`
	JudgeName         string     `bson:"judgeName"`
	HearingType       Type       `bson:"hearingType"`
	Purpose           string     `bson:"purpose"`
	CourtInstructions string     `bson:"courtInstructions"`
	DocumentsToBring  []string   `bson:"documentsToBring"`
	Proceedings       string     `bson:"proceedings"`
	NextHearingDate   *time.Time `bson:"nextHearingDate,omitempty"`
	NextHearingTime   string     `bson:"nextHearingTime"`
	AdjournmentReason string     `bson:"adjournmentReason"`
	Attendance        Attendance `bson:"attendance"`
	Orders            []Order    `bson:"orders"`
	Notes             string     `bson:"notes"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`

	// Populated from the case on read, never stored.
	CaseNumber string `bson:"-"`
	ClientName string `bson:"-"`
}

// Field names understood by the repositories' Query method.
const (
	FieldID          = "id"
	FieldOwner       = "owner"
	FieldCaseID      = "caseId"
	FieldStatus      = "status"
	FieldHearingDate = "hearingDate"
	FieldHearingTime = "hearingTime"
	FieldStartAt     = "startAt"
	FieldDocuments   = "documentsToBring"
)

// Conflict is one existing hearing that clashes with a candidate time slot.
type Conflict struct {
	HearingID      string
	CaseNumber     string
	StartAt        time.Time
	EndAt          time.Time
	ConflictReason string
	// ResourceScope lists the matched dimensions, e.g. "courtroom".
	ResourceScope []string
}

// ValidationError carries every problem found in a hearing draft.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid hearing data: " + strings.Join(e.Errors, "; ")
}

// ConflictError is returned by writes that clash with existing hearings and carry no override.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("hearing conflicts with %d existing hearing(s)", len(e.Conflicts))
}
