package validation

import "strings"

// IsValidRating reports whether a rating value is inside the accepted range.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// IsValidQuantity reports whether an order line quantity is positive.
func IsValidQuantity(quantity int) bool {
	return quantity > 0
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStoreStatus validates a seller store status transition target
func IsValidStoreStatus(status string) bool {
	switch status {
	case "pending", "approved", "rejected", "deregistered":
		return true
	}
	return false
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}
