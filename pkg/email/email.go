package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type InquiryNotificationData struct {
	OwnerEmail   string `json:"-"`
	OwnerName    string
	ListingTitle string
	SenderName   string
	SenderEmail  string
	SenderPhone  string
	Message      string
}

type SubscriptionEmailData struct {
	BusinessName string
	PlanName     string
	Price        int64
	Currency     string
	MaxListings  int
	ExpiresAt    time.Time
	IsRenewal    bool
}

type SubscriptionCancelledData struct {
	BusinessName string
	PlanName     string
	ExpiresAt    time.Time
}

type SubscriptionExpiryWarningData struct {
	BusinessName string
	PlanName     string
	DaysLeft     int
	ExpiryDate   time.Time
}

type WeeklyStatsData struct {
	BusinessName  string
	TotalListings int64
	TotalViews    int64
	UniqueViews   int64
	TopListing    string
	TopViews      int64
	InquiryCount  int64
	StartDate     time.Time
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "Orange Rides <noreply@orangerides.com>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Resend API error: Status: %d, Body: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to Orange Rides! 🚗", "welcome.html", data)
}

func (s *EmailService) SendInquiryNotificationEmail(data InquiryNotificationData) error {
	return s.sendTemplateEmail(data.OwnerEmail, "New Inquiry for Your Vehicle! 📋", "inquiry_notification.html", data)
}

func (s *EmailService) SendSubscriptionStartedEmail(
	email string,
	businessName string,
	planName string,
	price int64,
	currency string,
	maxListings int,
	expiresAt time.Time,
	isRenewal bool,
) error {
	data := SubscriptionEmailData{
		BusinessName: businessName,
		PlanName:     planName,
		Price:        price,
		Currency:     currency,
		MaxListings:  maxListings,
		ExpiresAt:    expiresAt,
		IsRenewal:    isRenewal,
	}

	subject := "Your Orange Rides Subscription Is Active! 🎉"
	if isRenewal {
		subject = "Your Orange Rides Subscription Has Been Renewed 🔄"
	}

	return s.sendTemplateEmail(email, subject, "subscription_started.html", data)
}

func (s *EmailService) SendSubscriptionCancelledEmail(email, businessName, planName string, expiresAt time.Time) error {
	data := SubscriptionCancelledData{
		BusinessName: businessName,
		PlanName:     planName,
		ExpiresAt:    expiresAt,
	}
	return s.sendTemplateEmail(email, "Your Subscription Has Been Cancelled", "subscription_cancelled.html", data)
}

func (s *EmailService) SendSubscriptionExpiryWarning(
	email, businessName, planName string,
	expiryDate time.Time,
	daysLeft int,
) error {
	data := SubscriptionExpiryWarningData{
		BusinessName: businessName,
		PlanName:     planName,
		DaysLeft:     daysLeft,
		ExpiryDate:   expiryDate,
	}
	return s.sendTemplateEmail(
		email,
		fmt.Sprintf("Your Subscription Expires in %d Days ⚠️", daysLeft),
		"subscription_expiry_warning.html",
		data,
	)
}

func (s *EmailService) SendWeeklyStatsEmail(
	email, businessName string,
	totalListings, totalViews, uniqueViews int64,
	topListing string, topViews, inquiryCount int64,
	startDate time.Time,
) error {
	data := WeeklyStatsData{
		BusinessName:  businessName,
		TotalListings: totalListings,
		TotalViews:    totalViews,
		UniqueViews:   uniqueViews,
		TopListing:    topListing,
		TopViews:      topViews,
		InquiryCount:  inquiryCount,
		StartDate:     startDate,
	}
	return s.sendTemplateEmail(email, "Your Weekly Listing Statistics 📊", "weekly_stats.html", data)
}
