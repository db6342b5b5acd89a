package internaldefs

import (
	classAuth "github.com/MrEthical07/classAuth"
)

// CounterDef binds an engine counter to its exported name.
type CounterDef struct {
	ID   classAuth.MetricID
	Name string
	Help string
}

// HistogramDef binds the engine latency histogram to its exported name.
type HistogramDef struct {
	ID   classAuth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: classAuth.MetricAuthSuccess, Name: "classauth_auth_success_total", Help: "Requests resolved to a principal."},
	{ID: classAuth.MetricAuthNoCredential, Name: "classauth_auth_no_credential_total", Help: "Requests without a credential."},
	{ID: classAuth.MetricAuthExpired, Name: "classauth_auth_expired_total", Help: "Requests with an expired credential."},
	{ID: classAuth.MetricAuthInvalid, Name: "classauth_auth_invalid_total", Help: "Requests with a malformed or unauthentic credential."},
	{ID: classAuth.MetricAuthRevoked, Name: "classauth_auth_revoked_total", Help: "Requests with a revoked credential."},
	{ID: classAuth.MetricAuthPrincipalNotFound, Name: "classauth_auth_principal_not_found_total", Help: "Credentials whose subject resolved to no principal."},
	{ID: classAuth.MetricAuthBackendFailure, Name: "classauth_auth_backend_failure_total", Help: "Directory or revocation store failures."},
	{ID: classAuth.MetricAuthStudent, Name: "classauth_auth_student_total", Help: "Requests authenticated as a student."},
	{ID: classAuth.MetricAuthTeacher, Name: "classauth_auth_teacher_total", Help: "Requests authenticated as a teacher."},
	{ID: classAuth.MetricAccessDenied, Name: "classauth_access_denied_total", Help: "Requests rejected by a role guard."},
	{ID: classAuth.MetricTokenRevoked, Name: "classauth_token_revoked_total", Help: "Single credential revocations."},
	{ID: classAuth.MetricSubjectRevoked, Name: "classauth_subject_revoked_total", Help: "Subject-wide revocations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: classAuth.MetricAuthenticateLatency, Name: "classauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "classauth_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the upper bounds of the engine buckets in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form usable inside a metric
// name.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero filling short
// input and truncating long input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
