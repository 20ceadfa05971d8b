package mutation

// Notice is a user-facing notification title/message pair.
type Notice struct {
	Title   string
	Message string
}

type noticePair struct {
	success Notice
	failure Notice
}

// Per-entity, per-operation notification catalog.
var notices = map[string]map[string]noticePair{
	"product": {
		"create": {
			success: Notice{"Product Created", "Product has been created successfully!"},
			failure: Notice{"Creation Failed", "Failed to create product. Please try again."},
		},
		"update": {
			success: Notice{"Product Updated", "Product has been updated successfully!"},
			failure: Notice{"Update Failed", "Failed to update product. Please try again."},
		},
		"delete": {
			success: Notice{"Product Deleted", "Product has been deleted successfully!"},
			failure: Notice{"Deletion Failed", "Failed to delete product. Please try again."},
		},
	},
	"order": {
		"update": {
			success: Notice{"Order Updated", "Order status has been updated successfully!"},
			failure: Notice{"Update Failed", "Failed to update order. Please try again."},
		},
	},
}

func successNotice(entityName, op string) Notice {
	if pair, ok := notices[entityName][op]; ok {
		return pair.success
	}
	return Notice{Title: "Success", Message: "Operation completed successfully."}
}

// errorNotice resolves the failure notice, preferring the
// server-provided message over the per-operation default.
func errorNotice(entityName, op, serverMessage string) Notice {
	notice := Notice{Title: "Operation Failed", Message: "Something went wrong. Please try again."}
	if pair, ok := notices[entityName][op]; ok {
		notice = pair.failure
	}
	if serverMessage != "" {
		notice.Message = serverMessage
	}
	return notice
}
