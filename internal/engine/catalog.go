package engine

import "github.com/harshithreddy-dev/rewardo/internal/store"

// DefaultCatalog is the fixed achievement set inserted once per new user.
// The engine only consumes the seeded rows; it does not own the catalog.
var DefaultCatalog = []store.CatalogAchievement{
	{Title: "First Focus", Description: "Complete your first focus session", Type: string(TypeSessions), Requirement: 1, Reward: 10},
	{Title: "Focus Master", Description: "Complete 10 focus sessions", Type: string(TypeSessions), Requirement: 10, Reward: 50},
	{Title: "Deep Worker", Description: "Accumulate 120 minutes of focus time", Type: string(TypeFocusTime), Requirement: 120, Reward: 30},
	{Title: "Task Champion", Description: "Complete 15 tasks", Type: string(TypeTask), Requirement: 15, Reward: 40},
	{Title: "Consistency King", Description: "Maintain a 5-day focus streak", Type: string(TypeStreak), Requirement: 5, Reward: 100},
	{Title: "Coin Collector", Description: "Earn 100 coins from focus sessions", Type: string(TypeCoins), Requirement: 100, Reward: 20},
	{Title: "Focus Warrior", Description: "Accumulate 45 minutes of focus time", Type: string(TypeFocusTime), Requirement: 45, Reward: 20},
	{Title: "Early Bird", Description: "Complete a focus session before 9 AM", Type: string(TypeMilestone), Requirement: 1, Reward: 15},
	{Title: "Weekend Warrior", Description: "Complete 3 focus sessions on a weekend", Type: string(TypeMilestone), Requirement: 3, Reward: 30},
	{Title: "Task Master", Description: "Complete 50 tasks total", Type: string(TypeTask), Requirement: 50, Reward: 150},
	{Title: "Focus Legend", Description: "Accumulate 500 minutes of focus time", Type: string(TypeFocusTime), Requirement: 500, Reward: 200},
	{Title: "Streak Master", Description: "Maintain a 10-day focus streak", Type: string(TypeStreak), Requirement: 10, Reward: 250},
}
