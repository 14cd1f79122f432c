package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Ticket creation is the only write path, and the API only accepts XML
// bodies on writes. Free text goes in CDATA so callers' punctuation cannot
// break the document.

const threadTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<prestashop>
	<customer_thread>
		<id_lang>1</id_lang>
		<id_contact>1</id_contact>
		<id_shop>1</id_shop>
		<email><![CDATA[%s]]></email>
		<status><![CDATA[open]]></status>
		<token><![CDATA[%s]]></token>
	</customer_thread>
</prestashop>`

const messageTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<prestashop>
	<customer_message>
		<id_customer_thread>%d</id_customer_thread>
		<message><![CDATA[%s]]></message>
	</customer_message>
</prestashop>`

// CreateTicket opens a customer-service thread for email and attaches the
// message to it. Returns the new thread id.
func (c *Client) CreateTicket(ctx context.Context, email, message string) (int, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	body, err := c.postXML(ctx, "customer_threads", fmt.Sprintf(threadTemplate, cdataSafe(email), token))
	if err != nil {
		return 0, fmt.Errorf("create thread: %w", err)
	}

	var created struct {
		CustomerThread struct {
			ID FlexInt `json:"id"`
		} `json:"customer_thread"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("decode thread response: %w", err)
	}
	threadID := int(created.CustomerThread.ID)
	if threadID == 0 {
		return 0, fmt.Errorf("thread response carried no id")
	}

	if _, err := c.postXML(ctx, "customer_messages", fmt.Sprintf(messageTemplate, threadID, cdataSafe(message))); err != nil {
		return 0, fmt.Errorf("attach message to thread %d: %w", threadID, err)
	}
	return threadID, nil
}

// cdataSafe neutralizes the one sequence that can terminate a CDATA section.
func cdataSafe(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]&gt;")
}
