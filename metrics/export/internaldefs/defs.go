package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// ResolveStatusName is the single counter family for resolver verdicts,
// split by a status label.
const ResolveStatusName = "gogate_resolve_total"

// ResolveStatusHelp describes ResolveStatusName.
const ResolveStatusHelp = "Resolver verdicts by auth status."

// StatusDef maps one resolver status label to its engine counter.
type StatusDef struct {
	ID     goGate.MetricID
	Status goGate.AuthStatus
}

// StatusDefs lists the resolver statuses in decision order.
var StatusDefs = []StatusDef{
	{ID: goGate.MetricResolveMissingToken, Status: goGate.StatusMissingToken},
	{ID: goGate.MetricResolveInvalidAuthToken, Status: goGate.StatusInvalidAuthToken},
	{ID: goGate.MetricResolveAuthenticated, Status: goGate.StatusAuthenticated},
	{ID: goGate.MetricResolveInvalidRefreshToken, Status: goGate.StatusInvalidRefreshToken},
	{ID: goGate.MetricResolveAuthRefreshMismatch, Status: goGate.StatusAuthRefreshMismatch},
	{ID: goGate.MetricResolveRefreshTokenReused, Status: goGate.StatusRefreshTokenReused},
	{ID: goGate.MetricResolveUserNotFound, Status: goGate.StatusUserNotFound},
	{ID: goGate.MetricResolveUserSuspended, Status: goGate.StatusUserSuspended},
}

// CounterDefs lists the unlabeled counters in render order.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricResolveRotated, Name: "gogate_resolve_rotated_total", Help: "Resolutions that issued a new credential pair."},
	{ID: goGate.MetricResolveDependencyFailure, Name: "gogate_resolve_dependency_failure_total", Help: "Resolutions aborted by a store or directory failure."},
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Successful login attempts."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Failed login attempts."},
	{ID: goGate.MetricLoginRateLimited, Name: "gogate_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goGate.MetricLoginSuspended, Name: "gogate_login_suspended_total", Help: "Login attempts against suspended accounts."},
	{ID: goGate.MetricPasswordRehash, Name: "gogate_password_rehash_total", Help: "Stored password hashes upgraded at login."},
	{ID: goGate.MetricAccountCreationSuccess, Name: "gogate_account_creation_success_total", Help: "Successful account creations."},
	{ID: goGate.MetricAccountCreationDuplicate, Name: "gogate_account_creation_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: goGate.MetricAccountCreationRateLimited, Name: "gogate_account_creation_rate_limited_total", Help: "Rate-limited account creation attempts."},
	{ID: goGate.MetricLogout, Name: "gogate_logout_total", Help: "Logout operations."},
}

// AuditDroppedName counts audit events lost to a full dispatcher buffer.
const AuditDroppedName = "gogate_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricResolveLatency, Name: "gogate_resolve_latency_seconds", Help: "Resolve latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the engine's buckets.
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

// HistogramBoundSuffix is HistogramBounds in a form usable inside instrument names.
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

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling
// missing buckets and ignoring extras.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
