package snapshot

import "fmt"

// Wire sets the owner references of every component and intent filter.
// It is idempotent.
func (p *Package) Wire() {
	for i, a := range p.Activities {
		a.wire(p.PackageName, KindActivity, i)
		wireFilters(a.IntentFilters, a.Ref)
	}
	for i, s := range p.Services {
		s.wire(p.PackageName, KindService, i)
		wireFilters(s.IntentFilters, s.Ref)
	}
	for i, r := range p.Receivers {
		r.wire(p.PackageName, KindReceiver, i)
		wireFilters(r.IntentFilters, r.Ref)
	}
	for i, pr := range p.Providers {
		pr.wire(p.PackageName, KindProvider, i)
		wireFilters(pr.IntentFilters, pr.Ref)
	}
	for i, in := range p.Instrumentation {
		in.wire(p.PackageName, KindInstrumentation, i)
	}
	for i, perm := range p.Permissions {
		perm.wire(p.PackageName, KindPermission, i)
	}
	for i, g := range p.PermissionGroups {
		g.wire(p.PackageName, KindPermissionGroup, i)
	}
}

func (c *Component) wire(pkg string, kind ComponentKind, index int) {
	c.Owner = pkg
	c.Ref = ComponentRef{Package: pkg, Kind: kind, Index: index}
}

func wireFilters(filters []*IntentFilter, owner ComponentRef) {
	for _, f := range filters {
		f.Owner = owner
	}
}

// VerifyOwnership checks that every component is owned by p and every
// intent filter by the component holding it.
func (p *Package) VerifyOwnership() error {
	check := func(c *Component, kind ComponentKind, index int, filters []*IntentFilter) error {
		want := ComponentRef{Package: p.PackageName, Kind: kind, Index: index}
		if c.Owner != p.PackageName {
			return fmt.Errorf("%s: owner is %q", want, c.Owner)
		}
		if c.Ref != want {
			return fmt.Errorf("%s: ref is %s", want, c.Ref)
		}
		if resolved, ok := p.Resolve(c.Ref); !ok || resolved != c {
			return fmt.Errorf("%s: ref does not resolve to the component", want)
		}
		for j, f := range filters {
			if f.Owner != want {
				return fmt.Errorf("%s: filter %d owned by %s", want, j, f.Owner)
			}
		}
		return nil
	}

	for i, a := range p.Activities {
		if err := check(&a.Component, KindActivity, i, a.IntentFilters); err != nil {
			return err
		}
	}
	for i, s := range p.Services {
		if err := check(&s.Component, KindService, i, s.IntentFilters); err != nil {
			return err
		}
	}
	for i, r := range p.Receivers {
		if err := check(&r.Component, KindReceiver, i, r.IntentFilters); err != nil {
			return err
		}
	}
	for i, pr := range p.Providers {
		if err := check(&pr.Component, KindProvider, i, pr.IntentFilters); err != nil {
			return err
		}
	}
	for i, in := range p.Instrumentation {
		if err := check(&in.Component, KindInstrumentation, i, nil); err != nil {
			return err
		}
	}
	for i, perm := range p.Permissions {
		if err := check(&perm.Component, KindPermission, i, nil); err != nil {
			return err
		}
	}
	for i, g := range p.PermissionGroups {
		if err := check(&g.Component, KindPermissionGroup, i, nil); err != nil {
			return err
		}
	}
	return nil
}
