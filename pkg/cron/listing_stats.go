package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/email"
)

type ownerWeekStats struct {
	OwnerID       uint
	OwnerEmail    string
	BusinessName  string
	TotalListings int64
	TotalViews    int64
	UniqueViews   int64
	TopListing    string
	TopViews      int64
	InquiryCount  int64
}

func InitListingStatsCron(emailService *email.EmailService) {
	c := cron.New()

	// Sunday evening digest
	_, err := c.AddFunc("0 20 * * 0", func() {
		sendWeeklyListingStats(emailService)
	})

	if err != nil {
		log.Printf("Could not initialize listing stats cron: %v", err)
		return
	}

	c.Start()
}

func sendWeeklyListingStats(emailService *email.EmailService) {
	startDate := time.Now().AddDate(0, 0, -7)

	var stats []ownerWeekStats

	err := database.GetDB().Raw(`
        SELECT
            o.id as owner_id,
            u.email as owner_email,
            o.business_name,
            COUNT(DISTINCT l.id) as total_listings,
            COUNT(lv.id) as total_views,
            COUNT(DISTINCT lv.ip) as unique_views,
            (
                SELECT l2.title
                FROM listings l2
                LEFT JOIN listing_views lv2 ON l2.id = lv2.listing_id
                WHERE l2.owner_id = o.id AND lv2.created_at >= ?
                GROUP BY l2.id
                ORDER BY COUNT(lv2.id) DESC
                LIMIT 1
            ) as top_listing,
            (
                SELECT COUNT(lv3.id)
                FROM listings l3
                LEFT JOIN listing_views lv3 ON l3.id = lv3.listing_id
                WHERE l3.owner_id = o.id AND lv3.created_at >= ?
                GROUP BY l3.id
                ORDER BY COUNT(lv3.id) DESC
                LIMIT 1
            ) as top_views,
            COUNT(i.id) as inquiry_count
        FROM owners o
        JOIN users u ON u.id = o.user_id
        LEFT JOIN listings l ON o.id = l.owner_id
        LEFT JOIN listing_views lv ON l.id = lv.listing_id AND lv.created_at >= ?
        LEFT JOIN inquiries i ON l.id = i.listing_id AND i.created_at >= ?
        GROUP BY o.id, u.email, o.business_name
        HAVING COUNT(lv.id) > 0
    `, startDate, startDate, startDate, startDate).Scan(&stats).Error

	if err != nil {
		log.Printf("Error fetching weekly listing stats: %v", err)
		return
	}

	for _, stat := range stats {
		err := emailService.SendWeeklyStatsEmail(
			stat.OwnerEmail,
			stat.BusinessName,
			stat.TotalListings,
			stat.TotalViews,
			stat.UniqueViews,
			stat.TopListing,
			stat.TopViews,
			stat.InquiryCount,
			startDate,
		)
		if err != nil {
			log.Printf("Error sending weekly stats to %s: %v", stat.OwnerEmail, err)
		}
	}
}
