package repositories

import "gorm.io/gorm"

// TenantScope narrows list queries to what a caller may see. Businesses
// in AdminIDs are fully visible; businesses in MemberIDs only show rows
// the caller created.
type TenantScope struct {
	AdminIDs  []uint
	MemberIDs []uint
	UserID    uint
}

func (s TenantScope) Empty() bool {
	return len(s.AdminIDs) == 0 && len(s.MemberIDs) == 0
}

func (s TenantScope) apply(db *gorm.DB, query *gorm.DB) *gorm.DB {
	switch {
	case len(s.AdminIDs) > 0 && len(s.MemberIDs) > 0:
		return query.Where(
			db.Where("business_id IN ?", s.AdminIDs).
				Or("business_id IN ? AND user_id = ?", s.MemberIDs, s.UserID),
		)
	case len(s.AdminIDs) > 0:
		return query.Where("business_id IN ?", s.AdminIDs)
	default:
		return query.Where("business_id IN ? AND user_id = ?", s.MemberIDs, s.UserID)
	}
}
