package constants

// Callback data prefixes. Ids appended after the prefix are opaque
// UUIDs, so splitting on ":" is safe.
const (
	CallbackConfirm = "confirm:"
	CallbackEdit    = "edit:"
	CallbackCancel  = "cancel:"

	CallbackConfirmBatch = "confirm_batch:"
	CallbackReviewBatch  = "review_batch:"
	CallbackCancelBatch  = "cancel_batch:"

	CallbackSetupType    = "setup_type:"
	CallbackSetupTypeOK  = "setup_type_ok:"
	CallbackSetupPerm    = "setup_perm:"
	CallbackSetupCur     = "setup_cur:"
	CallbackSetupBack    = "setup_back:"
)
