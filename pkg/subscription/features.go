package subscription

import "orangerides_backend/pkg/plan"

type Feature string

const (
	InquiryForm     Feature = "inquiry_form"
	FleetUpdates    Feature = "fleet_updates"
	WhatsAppButton  Feature = "whatsapp_button"
	EmailSupport    Feature = "email_support"
	PrioritySupport Feature = "priority_support"
)

var planFeatures = map[plan.Key]map[Feature]bool{
	plan.Weekly: {
		InquiryForm:     true,
		FleetUpdates:    false,
		WhatsAppButton:  false,
		EmailSupport:    true,
		PrioritySupport: false,
	},
	plan.Monthly: {
		InquiryForm:     true,
		FleetUpdates:    true,
		WhatsAppButton:  true,
		EmailSupport:    true,
		PrioritySupport: false,
	},
	plan.Yearly: {
		InquiryForm:     true,
		FleetUpdates:    true,
		WhatsAppButton:  true,
		EmailSupport:    true,
		PrioritySupport: true,
	},
}

func CanUseFeature(key plan.Key, feature Feature) bool {
	features, exists := planFeatures[key]
	if !exists {
		return false
	}
	return features[feature]
}
