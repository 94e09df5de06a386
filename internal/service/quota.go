package service

import "simsync/internal/model"

// CheckDownloadQuota rejects a basic user who has used up the day's downloads.
// Premium users are never limited.
func CheckDownloadQuota(u *model.User, day string) error {
	if u.SubscriptionTier != model.TierBasic {
		return nil
	}
	if u.DownloadsOn(day) >= model.BasicDailyDownloadLimit {
		return newError(ErrRateLimited, "Daily download limit reached. Upgrade to Premium for unlimited downloads!")
	}
	return nil
}
