package service

import "errors"

var (
	// ErrRequirementSetNotFound indicates the requirement set does not exist.
	ErrRequirementSetNotFound = errors.New("requirement set not found")
	// ErrRequirementNotFound indicates the requirement does not exist or belongs to another set.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrSubmissionNotFound indicates no submission matched.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrCommentNotFound indicates the comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrUserNotFound indicates a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrArticleNotFound indicates the article does not exist.
	ErrArticleNotFound = errors.New("article not found")

	ErrTitleRequired         = errors.New("title is required")
	ErrFileRequired          = errors.New("file is required")
	ErrInvalidFileFormat     = errors.New("invalid file format")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrEmptyStudentList      = errors.New("student id list must not be empty")
	ErrNotAStudent           = errors.New("only student accounts can be assigned")
	ErrEmptyRequirementList  = errors.New("at least one requirement is required")
	ErrInvalidDeadline       = errors.New("deadline must be an RFC3339 timestamp or YYYY-MM-DD date")
	ErrInvalidApprovalStatus = errors.New("approval status must be Approved (2) or Rejected (3)")
	ErrEmptyContent          = errors.New("content must not be empty")
	ErrContentTooLong        = errors.New("content must be at most 500 characters")
	ErrInvalidRole           = errors.New("role must be one of Student, StudentAdmin, Admin")
	ErrInvalidImage          = errors.New("image must be a JPEG, PNG or GIF")

	// ErrInvalidCredentials indicates an email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden indicates the principal may not act on the resource.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrEmailTaken indicates another account already uses the email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrUserHasComments blocks deleting a user who authored submission comments.
	ErrUserHasComments = errors.New("user has authored submission comments and cannot be deleted")
	// ErrUpstreamUpload indicates the file host rejected or failed the upload.
	ErrUpstreamUpload = errors.New("cloud upload failed")
)
