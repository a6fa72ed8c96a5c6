package dealflow

import (
	"fmt"
	"net/url"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
)

// ContactLink собирает mailto: ссылку на сторону сделки. Письмо отправляет
// почтовый клиент пользователя.
func ContactLink(d entity.Deal, party value.Party) (string, error) {
	var p entity.Party

	switch party {
	case value.PartyBuyer:
		p = d.Buyer
	case value.PartySeller:
		p = d.Seller.Party
	default:
		return "", domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidParty, "unknown party %q", party)
	}

	if p.Email == "" {
		return "", domain.Errorf(domain.KindUnprocessable, errcodes.InvalidParty, "deal %s: %s has no email", d.ID, party)
	}

	link := url.URL{
		Scheme:   "mailto",
		Opaque:   p.Email,
		RawQuery: "subject=" + url.PathEscape(fmt.Sprintf("Re: %s (%s)", d.ItemTitle, d.ID)),
	}

	return link.String(), nil
}
