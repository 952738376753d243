package resolve

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"soundmatch/internal/logging"
)

type validator struct {
	lister      MemberLister
	policy      ValidatePolicy
	callTimeout time.Duration
	logger      *slog.Logger
}

// validate samples the container's members sequentially in cursor order and
// counts members credited to referenceID. A paging failure ends sampling
// early; the verdict uses whatever was sampled. Only parent cancellation
// returns an error.
func (v validator) validate(ctx context.Context, containerID, referenceID string) (ValidationReport, error) {
	logger := logging.WithContext(ctx, v.logger)
	report := ValidationReport{CandidateID: containerID}
	cursor := ""
	for report.Sampled < v.policy.SampleCap {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		callCtx := ctx
		cancel := func() {}
		if v.callTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, v.callTimeout)
		}
		page, err := v.lister.ListMembers(callCtx, containerID, cursor)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logging.WarnWithContext(logger, "member paging failed",
				"member_paging_failed",
				logging.String("container_id", containerID),
				logging.Int("sampled", report.Sampled),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "catalog may be rate limiting; retry later"),
				logging.String(logging.FieldImpact, "validation verdict uses partial sample"),
			)
			break
		}
		for _, item := range page.Items {
			if report.Sampled >= v.policy.SampleCap {
				break
			}
			report.Sampled++
			if slices.Contains(item.ContributorIDs, referenceID) {
				report.Hits++
			}
		}
		if page.Next == "" || page.Next == cursor || len(page.Items) == 0 {
			break
		}
		cursor = page.Next
	}
	if report.Sampled > 0 {
		report.HitRatio = float64(report.Hits) / float64(report.Sampled)
	}
	report.Passed = v.policy.Passes(report.Hits, report.Sampled)
	logger.Debug("container validated",
		logging.String("container_id", containerID),
		logging.Int("sampled", report.Sampled),
		logging.Int("hits", report.Hits),
		logging.Float64("hit_ratio", report.HitRatio),
		logging.Bool("passed", report.Passed),
	)
	return report, nil
}
