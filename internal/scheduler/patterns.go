package scheduler

import "time"

// engagementPatterns maps platform -> weekday -> hour -> engagement score
// (0-100). Compiled from published per-platform engagement research; the
// smart scheduler treats it as read-only.
var engagementPatterns = map[string]map[time.Weekday]map[int]int{
	"instagram": {
		time.Monday: {6: 45, 7: 55, 8: 60, 9: 65, 10: 70, 11: 85, 12: 75, 13: 70, 14: 80, 15: 75, 16: 70, 17: 75, 18: 80, 19: 90, 20: 85, 21: 75, 22: 60},
		time.Tuesday: {6: 45, 7: 55, 8: 60, 9: 70, 10: 80, 11: 75, 12: 70, 13: 75, 14: 85, 15: 80, 16: 75, 17: 80, 18: 85, 19: 90, 20: 80, 21: 70, 22: 55},
		time.Wednesday: {6: 50, 7: 60, 8: 65, 9: 70, 10: 75, 11: 90, 12: 80, 13: 75, 14: 80, 15: 85, 16: 80, 17: 85, 18: 90, 19: 95, 20: 85, 21: 75, 22: 60},
		time.Thursday: {6: 45, 7: 55, 8: 60, 9: 65, 10: 80, 11: 85, 12: 75, 13: 70, 14: 85, 15: 80, 16: 75, 17: 80, 18: 85, 19: 90, 20: 85, 21: 75, 22: 60},
		time.Friday: {6: 40, 7: 50, 8: 55, 9: 65, 10: 80, 11: 75, 12: 70, 13: 75, 14: 85, 15: 80, 16: 75, 17: 90, 18: 85, 19: 80, 20: 70, 21: 60, 22: 50},
		time.Saturday: {8: 50, 9: 70, 10: 80, 11: 90, 12: 85, 13: 80, 14: 75, 15: 70, 16: 65, 17: 70, 18: 75, 19: 85, 20: 80, 21: 70, 22: 55},
		time.Sunday: {8: 55, 9: 65, 10: 80, 11: 85, 12: 80, 13: 75, 14: 85, 15: 80, 16: 75, 17: 80, 18: 85, 19: 95, 20: 85, 21: 75, 22: 60},
	},
	"facebook": {
		time.Monday: {8: 60, 9: 75, 10: 70, 11: 65, 12: 70, 13: 85, 14: 75, 15: 70, 16: 80, 17: 75, 18: 70, 19: 65},
		time.Tuesday: {8: 65, 9: 80, 10: 75, 11: 70, 12: 75, 13: 85, 14: 80, 15: 75, 16: 85, 17: 80, 18: 75, 19: 70},
		time.Wednesday: {8: 70, 9: 85, 10: 80, 11: 75, 12: 80, 13: 90, 14: 85, 15: 90, 16: 85, 17: 80, 18: 75, 19: 70},
		time.Thursday: {8: 65, 9: 80, 10: 75, 11: 70, 12: 85, 13: 80, 14: 85, 15: 90, 16: 85, 17: 80, 18: 75, 19: 70},
		time.Friday: {8: 60, 9: 75, 10: 70, 11: 80, 12: 75, 13: 70, 14: 85, 15: 80, 16: 75, 17: 70, 18: 65, 19: 60},
		time.Saturday: {9: 70, 10: 75, 11: 80, 12: 90, 13: 85, 14: 80, 15: 85, 16: 80, 17: 75, 18: 70},
		time.Sunday: {9: 75, 10: 80, 11: 85, 12: 90, 13: 85, 14: 80, 15: 85, 16: 80, 17: 75, 18: 70},
	},
	"x": {
		time.Monday: {7: 60, 8: 80, 9: 85, 10: 75, 11: 70, 12: 90, 13: 85, 14: 75, 15: 70, 16: 75, 17: 85, 18: 80},
		time.Tuesday: {7: 65, 8: 85, 9: 90, 10: 80, 11: 75, 12: 85, 13: 80, 14: 75, 15: 75, 16: 80, 17: 90, 18: 85},
		time.Wednesday: {7: 70, 8: 85, 9: 90, 10: 85, 11: 80, 12: 90, 13: 85, 14: 80, 15: 80, 16: 85, 17: 90, 18: 85},
		time.Thursday: {7: 65, 8: 80, 9: 85, 10: 80, 11: 75, 12: 85, 13: 80, 14: 75, 15: 75, 16: 80, 17: 85, 18: 80},
		time.Friday: {7: 60, 8: 75, 9: 80, 10: 75, 11: 70, 12: 80, 13: 75, 14: 70, 15: 70, 16: 75, 17: 80, 18: 75},
		time.Saturday: {9: 70, 10: 75, 11: 80, 12: 85, 13: 80, 14: 75, 15: 80, 16: 75, 17: 70},
		time.Sunday: {9: 75, 10: 80, 11: 85, 12: 90, 13: 85, 14: 80, 15: 85, 16: 80, 17: 75},
	},
	"linkedin": {
		time.Monday: {7: 75, 8: 90, 9: 85, 10: 95, 11: 85, 12: 90, 13: 80, 14: 75, 15: 70, 16: 65, 17: 80},
		time.Tuesday: {7: 80, 8: 95, 9: 90, 10: 95, 11: 85, 12: 90, 13: 80, 14: 75, 15: 70, 16: 65, 17: 85},
		time.Wednesday: {7: 85, 8: 95, 9: 90, 10: 100, 11: 90, 12: 95, 13: 85, 14: 80, 15: 75, 16: 70, 17: 85},
		time.Thursday: {7: 80, 8: 90, 9: 85, 10: 95, 11: 85, 12: 90, 13: 80, 14: 85, 15: 80, 16: 70, 17: 85},
		time.Friday: {7: 70, 8: 80, 9: 75, 10: 85, 11: 80, 12: 75, 13: 70, 14: 65, 15: 60, 16: 55, 17: 70},
		time.Saturday: {10: 50, 11: 55, 12: 50},
		time.Sunday: {10: 55, 11: 60, 12: 55, 17: 65, 18: 70},
	},
	"tiktok": {
		time.Monday: {6: 55, 7: 70, 8: 65, 9: 60, 10: 65, 11: 70, 12: 85, 13: 80, 14: 75, 15: 90, 16: 85, 17: 80, 18: 85, 19: 95, 20: 90, 21: 100, 22: 90},
		time.Tuesday: {6: 50, 7: 65, 8: 60, 9: 75, 10: 70, 11: 75, 12: 85, 13: 80, 14: 75, 15: 85, 16: 80, 17: 85, 18: 90, 19: 100, 20: 95, 21: 95, 22: 85},
		time.Wednesday: {6: 55, 7: 70, 8: 65, 9: 70, 10: 75, 11: 80, 12: 90, 13: 85, 14: 80, 15: 90, 16: 85, 17: 90, 18: 95, 19: 100, 20: 95, 21: 90, 22: 80},
		time.Thursday: {6: 50, 7: 65, 8: 60, 9: 65, 10: 70, 11: 75, 12: 85, 13: 80, 14: 75, 15: 90, 16: 85, 17: 90, 18: 95, 19: 100, 20: 95, 21: 100, 22: 90},
		time.Friday: {6: 45, 7: 60, 8: 55, 9: 60, 10: 65, 11: 70, 12: 80, 13: 75, 14: 80, 15: 95, 16: 90, 17: 100, 18: 95, 19: 95, 20: 90, 21: 100, 22: 95},
		time.Saturday: {10: 75, 11: 90, 12: 85, 13: 80, 14: 85, 15: 90, 16: 95, 17: 95, 18: 100, 19: 100, 20: 95, 21: 100, 22: 95, 23: 85},
		time.Sunday: {10: 80, 11: 90, 12: 85, 13: 85, 14: 90, 15: 95, 16: 90, 17: 95, 18: 100, 19: 100, 20: 95, 21: 95, 22: 90},
	},
	"threads": {
		time.Monday: {7: 55, 8: 65, 9: 70, 10: 80, 11: 85, 12: 80, 13: 85, 14: 80, 15: 75, 16: 70, 17: 75, 18: 85, 19: 90, 20: 85, 21: 75},
		time.Tuesday: {7: 60, 8: 70, 9: 75, 10: 85, 11: 80, 12: 75, 13: 85, 14: 85, 15: 80, 16: 75, 17: 80, 18: 90, 19: 95, 20: 85, 21: 75},
		time.Wednesday: {7: 65, 8: 75, 9: 80, 10: 85, 11: 90, 12: 85, 13: 90, 14: 85, 15: 85, 16: 80, 17: 85, 18: 90, 19: 100, 20: 90, 21: 80},
		time.Thursday: {7: 60, 8: 70, 9: 75, 10: 85, 11: 85, 12: 80, 13: 85, 14: 80, 15: 80, 16: 75, 17: 80, 18: 90, 19: 95, 20: 85, 21: 75},
		time.Friday: {7: 55, 8: 65, 9: 70, 10: 80, 11: 80, 12: 75, 13: 80, 14: 85, 15: 80, 16: 75, 17: 85, 18: 85, 19: 85, 20: 75, 21: 65},
		time.Saturday: {9: 70, 10: 80, 11: 85, 12: 90, 13: 85, 14: 80, 15: 75, 16: 80, 17: 85, 18: 90, 19: 95, 20: 85, 21: 75},
		time.Sunday: {9: 75, 10: 85, 11: 90, 12: 90, 13: 85, 14: 90, 15: 85, 16: 85, 17: 90, 18: 95, 19: 100, 20: 90, 21: 80},
	},
	"bluesky": {
		time.Monday: {8: 70, 9: 85, 10: 80, 11: 75, 12: 90, 13: 85, 14: 75, 15: 70, 16: 75, 17: 80, 18: 90, 19: 85},
		time.Tuesday: {8: 75, 9: 90, 10: 85, 11: 80, 12: 90, 13: 85, 14: 80, 15: 75, 16: 80, 17: 85, 18: 95, 19: 90},
		time.Wednesday: {8: 80, 9: 90, 10: 90, 11: 85, 12: 95, 13: 90, 14: 85, 15: 80, 16: 85, 17: 90, 18: 95, 19: 90},
		time.Thursday: {8: 75, 9: 85, 10: 85, 11: 80, 12: 90, 13: 85, 14: 80, 15: 75, 16: 80, 17: 85, 18: 90, 19: 85},
		time.Friday: {8: 70, 9: 80, 10: 80, 11: 75, 12: 85, 13: 80, 14: 75, 15: 70, 16: 75, 17: 85, 18: 85, 19: 80},
		time.Saturday: {10: 70, 11: 80, 12: 85, 13: 80, 14: 75, 15: 80, 16: 75, 17: 80, 18: 85, 19: 80},
		time.Sunday: {10: 75, 11: 85, 12: 90, 13: 85, 14: 80, 15: 85, 16: 80, 17: 85, 18: 90, 19: 85},
	},
}

// platformInsights holds the narrative guidance returned alongside suggestions.
var platformInsights = map[string][]string{
	"instagram": {
		"Instagram engagement peaks during lunch breaks and evening hours",
		"Wednesday and Sunday evenings see highest engagement",
		"Posting during commute times (7-9 AM, 5-7 PM) can boost visibility",
		"Stories perform best during evening hours",
	},
	"facebook": {
		"Facebook users are most active during midday and early afternoon",
		"Wednesday tends to be the highest engagement day",
		"Weekend posts often get more shares due to relaxed browsing",
		"Video content performs better in afternoon slots",
	},
	"x": {
		"X/Twitter sees high engagement during work breaks",
		"Weekday mornings and lunch hours are optimal",
		"News and trending topics perform best during business hours",
		"Threads and conversations peak during evening hours",
	},
	"linkedin": {
		"LinkedIn is primarily active during business hours",
		"Tuesday through Thursday mornings see highest engagement",
		"Professional content performs best before 10 AM",
		"Avoid posting late evenings and weekends",
	},
	"tiktok": {
		"TikTok engagement peaks during evening and night hours",
		"Weekend evenings see the highest activity",
		"Younger audiences are most active after school/work hours",
		"Trending sounds and challenges boost visibility significantly",
	},
	"threads": {
		"Threads engagement follows Instagram patterns",
		"Text-based content performs well during commute times",
		"Evening hours see highest conversation rates",
		"Cross-posting from Instagram stories can boost reach",
	},
	"bluesky": {
		"Bluesky has a tech-savvy, early adopter audience",
		"Engagement patterns similar to Twitter",
		"Midday and evening posts perform well",
		"Long-form threads and discussions are well-received",
	},
}
