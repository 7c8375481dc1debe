// Package record defines the typed records a client signs and reads back.
//
// Every record is constructed through a builder that validates its shape, so
// a value of these types is always well formed.
package record

import (
	"math/big"
	"strings"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/principal/address"
)

// UserCertificate is an issuance of a certificate by From to To.
type UserCertificate struct {
	CertID      *big.Int        `json:"certId"`
	From        address.Address `json:"from"`
	To          address.Address `json:"to"`
	Timestamp   *big.Int        `json:"timestamp,omitempty"`
	UserCertID  *big.Int        `json:"userCertId,omitempty"`
	Invalidated bool            `json:"invalidated,omitempty"`
}

// AssembleUserCertificate builds an issuance record. Addresses may be given
// in any letter case.
func AssembleUserCertificate(certID *big.Int, from, to string) (UserCertificate, error) {
	if certID == nil || certID.Sign() < 0 {
		return UserCertificate{}, failure.InvalidRecord("certId must be a non-negative integer")
	}
	f, err := address.Parse(from)
	if err != nil {
		return UserCertificate{}, failure.InvalidRecord("from: %s", err)
	}
	t, err := address.Parse(to)
	if err != nil {
		return UserCertificate{}, failure.InvalidRecord("to: %s", err)
	}
	return UserCertificate{CertID: new(big.Int).Set(certID), From: f, To: t}, nil
}

// Validate reports InvalidRecord for an issuance without a certId or a
// recipient. From is optional on a single issuance; the ledger takes it from
// the signer.
func (uc UserCertificate) Validate() error {
	if uc.CertID == nil || uc.CertID.Sign() < 0 {
		return failure.InvalidRecord("certId must be a non-negative integer")
	}
	if !uc.To.Defined() {
		return failure.InvalidRecord("to: address is required")
	}
	return nil
}

// Profile is keyed by its owner's address on the ledger.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Icon  string `json:"icon"`
}

func AssembleProfile(name, email, icon string) (Profile, error) {
	p := Profile{Name: name, Email: email, Icon: icon}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return failure.InvalidRecord("profile name is required")
	}
	return nil
}

type Member struct {
	Name    string          `json:"name"`
	Address address.Address `json:"address"`
	Icon    string          `json:"icon"`
}

func AssembleMember(name, addr, icon string) (Member, error) {
	a, err := address.Parse(addr)
	if err != nil {
		return Member{}, failure.InvalidRecord("member address: %s", err)
	}
	return Member{Name: name, Address: a, Icon: icon}, nil
}

// Group is mutable at a stable ledger id. ID is nil until the ledger has
// assigned one.
type Group struct {
	ID        *big.Int `json:"groupId,omitempty"`
	Name      string   `json:"name"`
	Residence string   `json:"residence,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Members   []Member `json:"members"`
}

// AssembleGroup builds a group. Member order is preserved; a member address
// listed twice is rejected.
func AssembleGroup(name, residence, phone string, members []Member) (Group, error) {
	if members == nil {
		members = []Member{}
	}
	g := Group{Name: name, Residence: residence, Phone: phone, Members: members}
	if err := g.Validate(); err != nil {
		return Group{}, err
	}
	return g, nil
}

// Validate reports InvalidRecord for a group without a name, with a negative
// id or with a member listed twice.
func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return failure.InvalidRecord("group name is required")
	}
	if g.ID != nil && g.ID.Sign() < 0 {
		return failure.InvalidRecord("groupId must be a non-negative integer")
	}
	seen := map[address.Address]struct{}{}
	for _, m := range g.Members {
		if _, ok := seen[m.Address]; ok {
			return failure.InvalidRecord("duplicate member %s", m.Address)
		}
		seen[m.Address] = struct{}{}
	}
	return nil
}

// WithID returns a copy of the group bound to a ledger id, as needed to sign
// an update.
func (g Group) WithID(id *big.Int) (Group, error) {
	if id == nil || id.Sign() < 0 {
		return Group{}, failure.InvalidRecord("groupId must be a non-negative integer")
	}
	g.ID = new(big.Int).Set(id)
	return g, nil
}

type MembershipKind string

const (
	Invite  MembershipKind = "invite"
	Disable MembershipKind = "disable"
)

// MembershipAction adds (invite) or soft-removes (disable) a member.
type MembershipAction struct {
	Kind    MembershipKind  `json:"kind"`
	GroupID *big.Int        `json:"groupId,omitempty"`
	Address address.Address `json:"address"`
}

func AssembleMembershipAction(kind MembershipKind, groupID *big.Int, addr string) (MembershipAction, error) {
	a, err := address.Parse(addr)
	if err != nil {
		return MembershipAction{}, failure.InvalidRecord("member address: %s", err)
	}
	var id *big.Int
	if groupID != nil {
		id = new(big.Int).Set(groupID)
	}
	m := MembershipAction{Kind: kind, GroupID: id, Address: a}
	if err := m.Validate(); err != nil {
		return MembershipAction{}, err
	}
	return m, nil
}

func (m MembershipAction) Validate() error {
	if m.Kind != Invite && m.Kind != Disable {
		return failure.InvalidRecord("unknown membership action %q", m.Kind)
	}
	if !m.Address.Defined() {
		return failure.InvalidRecord("member address is required")
	}
	return nil
}
