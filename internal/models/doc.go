// Package models defines the core domain models for Potluck.
//
// # Models
//
//   - User: registered account (email login, bcrypt password hash)
//   - Group: recipe-sharing group with a unique invite code
//   - Membership: user↔group relation carrying a role (member/admin)
//   - Recipe: a post scoped to a group, with optional photo/rating/notes
//   - Comment: a remark on a recipe
//
// View types (GroupSummary, GroupDetail, RecipeView, RecipeDetail,
// CommentView) are the annotated shapes the API serves; they exist so
// storage can produce them in one query instead of N+1 lookups.
//
// # Design Principles
//
// 1. **Avoid circular references**: relations use ID strings, not pointers
// 2. **Explicit absence**: optional columns are pointer fields so a missing
// rating or cook date serializes as JSON null rather than a zero value
// 3. **Unix timestamps**: all times are unix seconds (int64)
package models
